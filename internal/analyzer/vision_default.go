//go:build !gocv
// +build !gocv

package analyzer

func defaultBackend() visionBackend {
	return pureBackend{}
}
