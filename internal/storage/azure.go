package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

// CropHost uploads a crop image somewhere publicly reachable and returns
// its URL. Reverse-image search providers need this.
type CropHost interface {
	UploadPublic(ctx context.Context, img image.Image) (string, error)
}

type azureCropHost struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureCropHost uploads crops to an Azure blob container. The container
// must allow anonymous blob reads.
func NewAzureCropHost(accountName, accountKey, container string) (CropHost, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}
	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &azureCropHost{client: client, account: accountName, container: container}, nil
}

func (s *azureCropHost) UploadPublic(ctx context.Context, img image.Image) (string, error) {
	// Lossy webp keeps upload payloads small; Lens only needs the gist
	data, err := imageio.EncodeWebP(img, 80)
	if err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}

	name, err := blobName()
	if err != nil {
		return "", err
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, name, data, nil); err != nil {
		return "", fmt.Errorf("upload crop: %w", err)
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.account, s.container, name), nil
}

func blobName() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate blob name: %w", err)
	}
	return "crop_" + hex.EncodeToString(buf) + ".webp", nil
}
