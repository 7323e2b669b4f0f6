package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// storageAuth carries either Azurite shared key material or a token
// credential for a real storage account. Exactly one side is set.
type storageAuth struct {
	accountName string
	accountKey  string
	token       azcore.TokenCredential
}

func (a storageAuth) sharedKey() bool {
	return a.token == nil
}

// isLocal checks if the service URL indicates a local emulator (plain http).
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

// resolveAuth picks Azurite credentials for local URLs and the default
// Azure credential chain otherwise.
func resolveAuth(service, serviceURL string) (storageAuth, error) {
	if serviceURL == "" {
		return storageAuth{}, fmt.Errorf("%s service URL is required", service)
	}
	if isLocal(serviceURL) {
		slog.Info("using Azurite shared key credentials", "service", service)
		return storageAuth{accountName: azuriteAccountName, accountKey: azuriteAccountKey}, nil
	}

	slog.Info("using default Azure credentials", "service", service)
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return storageAuth{}, fmt.Errorf("failed to create default azure credential: %w", err)
	}
	return storageAuth{token: cred}, nil
}
