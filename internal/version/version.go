// Package version holds build metadata, set with
// -ldflags "-X github.com/ndewijer/Portfolio-Valuation-Backend/internal/version.Version=v1.2.3".
package version

// Version is the application version.
var Version = "dev"
