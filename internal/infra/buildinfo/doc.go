// Package buildinfo exposes the version of the running binary.
//
// Release builds inject values through ldflags:
//
//	go build -ldflags "-X github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Anything left unset is filled from the module build info embedded by
// the Go toolchain.
package buildinfo
