package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	store := &S3Store{bucket: "meme-storagee", region: "us-east-2"}

	testCases := []struct {
		key  string
		want string
	}{
		{"f.png", "https://meme-storagee.s3.us-east-2.amazonaws.com/f.png"},
		{"funny cat.jpg", "https://meme-storagee.s3.us-east-2.amazonaws.com/funny cat.jpg"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, store.ObjectURL(tc.key))
	}
}

func TestObjectURLDeterministic(t *testing.T) {
	store := &S3Store{bucket: "b", region: "r"}
	assert.Equal(t, store.ObjectURL("k"), store.ObjectURL("k"))
}
