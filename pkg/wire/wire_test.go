package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacAddress_String(t *testing.T) {
	a := MacAddress{0xA4, 0xCF, 0x12, 0x00, 0x0B, 0x01}
	assert.Equal(t, "a4:cf:12:00:0b:01", a.String())
	assert.Equal(t, "ff:ff:ff:ff:ff:ff", Broadcast().String())
}

func TestParseMac(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    MacAddress
		wantErr bool
	}{
		{
			name: "valid lower case",
			in:   "a4:cf:12:00:0b:01",
			want: MacAddress{0xA4, 0xCF, 0x12, 0x00, 0x0B, 0x01},
		},
		{
			name: "valid upper case",
			in:   "FF:FF:FF:FF:FF:FF",
			want: Broadcast(),
		},
		{
			name:    "too few octets",
			in:      "a4:cf:12:00:0b",
			wantErr: true,
		},
		{
			name:    "too many octets",
			in:      "a4:cf:12:00:0b:01:02",
			wantErr: true,
		},
		{
			name:    "non-hex octet",
			in:      "a4:cf:zz:00:0b:01",
			wantErr: true,
		},
		{
			name:    "octet out of range",
			in:      "a4:cf:123:00:0b:01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMac(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMacAddress_IsBroadcast(t *testing.T) {
	assert.True(t, Broadcast().IsBroadcast())
	assert.False(t, MacAddress{}.IsBroadcast())
	assert.False(t, MacAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}.IsBroadcast())
}

func TestEncodeProbe(t *testing.T) {
	assert.Equal(t, []byte{0xF0, 0x00, 0x22}, EncodeProbe())
}

func TestEncodeStatus(t *testing.T) {
	assert.Equal(t, []byte{0x22, 0x00}, EncodeStatus(0))
	assert.Equal(t, []byte{0x22, 0x01}, EncodeStatus(1))
	// Any non-zero sample collapses to 1.
	assert.Equal(t, []byte{0x22, 0x01}, EncodeStatus(0xFF))
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Message
		wantErr error
	}{
		{
			name: "probe",
			data: []byte{0xF0, 0x00, 0x22},
			want: Message{Tag: TagProbe, Payload: []byte{0x00, 0x22}},
		},
		{
			name: "status low",
			data: []byte{0x22, 0x00},
			want: Message{Tag: TagStatus, Payload: []byte{0x00}},
		},
		{
			name: "status high",
			data: []byte{0x22, 0x01},
			want: Message{Tag: TagStatus, Payload: []byte{0x01}},
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: ErrShortMessage,
		},
		{
			name:    "probe with truncated body",
			data:    []byte{0xF0, 0x00},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "status with oversized body",
			data:    []byte{0x22, 0x01, 0x01},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "status with out of range level",
			data:    []byte{0x22, 0x02},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "foreign tag",
			data:    []byte{0xAB, 0x01},
			wantErr: ErrUnknownTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatagramRoundTrip(t *testing.T) {
	d := Datagram{
		Src:     MacAddress{1, 2, 3, 4, 5, 6},
		Dst:     Broadcast(),
		Payload: EncodeProbe(),
	}

	raw := EncodeDatagram(d)
	got, err := DecodeDatagram(raw)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDecodeDatagram_Short(t *testing.T) {
	_, err := DecodeDatagram(make([]byte, 11))
	assert.ErrorIs(t, err, ErrShortDatagram)
}

func TestDecodeDatagram_EmptyPayload(t *testing.T) {
	d := Datagram{Src: MacAddress{1}, Dst: MacAddress{2}}
	got, err := DecodeDatagram(EncodeDatagram(d))
	require.NoError(t, err)
	assert.Empty(t, got.Payload)
}
