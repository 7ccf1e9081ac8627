package logrelay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProperties(t *testing.T) {
	props := DefaultProperties()

	assert.Equal(t, DefaultMaxBlockSize, props.MaxBlockSize)
	assert.Equal(t, int64(DefaultUploadThreshold), props.UploadThreshold)
	assert.Equal(t, int64(DefaultMaxStorageVolume), props.MaxStorageVolume)
	require.NoError(t, props.Validate())
}

func TestUploadProperties_Validate(t *testing.T) {
	tests := []struct {
		name    string
		props   UploadProperties
		wantErr bool
	}{
		{
			name: "valid",
			props: UploadProperties{
				MaxBlockSize:     64,
				UploadThreshold:  128,
				MaxStorageVolume: 256,
			},
			wantErr: false,
		},
		{
			name: "block too small for any record",
			props: UploadProperties{
				MaxBlockSize:     7,
				UploadThreshold:  128,
				MaxStorageVolume: 256,
			},
			wantErr: true,
		},
		{
			name: "zero upload threshold",
			props: UploadProperties{
				MaxBlockSize:     64,
				UploadThreshold:  0,
				MaxStorageVolume: 256,
			},
			wantErr: true,
		},
		{
			name: "volume below threshold",
			props: UploadProperties{
				MaxBlockSize:     64,
				UploadThreshold:  512,
				MaxStorageVolume: 256,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.props.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidProperties)

				return
			}

			require.NoError(t, err)
		})
	}
}
