// Package buildinfo exposes build-time version information.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/mirrorcheck-go/internal/infra/buildinfo.Version=v1.0.0" ./cmd/mirrorcheck
//
// Values not injected fall back to the module build info recorded by the Go
// toolchain.
package buildinfo
