package recon

import (
	"encoding/binary"
	"errors"
	"math"
	"os"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/zerr"
)

// WriteRaw stores a as little-endian float32 values with no header, the
// layout numpy's tofile/fromfile exchange with helper processes.
func WriteRaw(path string, a *domain.Array3) error {
	buf := make([]byte, 0, 4*len(a.Data))
	for _, v := range a.Data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	if err := os.WriteFile(path, buf, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write array"), "path", path)
	}
	return nil
}

// ReadRaw loads a raw little-endian float32 file that must hold exactly shape.Len() values.
func ReadRaw(path string, shape domain.Shape) (*domain.Array3, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file in our work dir
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read array"), "path", path)
	}
	if len(data) != 4*shape.Len() {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrShapeMismatch, "raw array has unexpected size"),
			"path", path), "bytes", len(data))
	}

	a := domain.NewArray3(shape)
	for i := range a.Data {
		a.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return a, nil
}

const (
	artifactVersion = 1
	headerSize      = 24
)

var artifactMagic = [4]byte{'T', 'B', 'O', 'P'}

// artifactHeader prefixes every operator artifact the reference engine writes.
type artifactHeader struct {
	Magic       [4]byte
	Version     uint16
	Kind        uint8
	Reserved    uint8
	Width       uint32
	Projections uint32
	Slices      uint32
	Count       uint32
}

func kindCode(kind domain.ArtifactKind) uint8 {
	for i, k := range domain.ArtifactKinds {
		if k == kind {
			return uint8(i + 1) //nolint:gosec // three kinds
		}
	}
	return 0
}

func writeArtifact(path string, kind domain.ArtifactKind, g domain.Geometry, payload []float64) error {
	h := artifactHeader{
		Magic:       artifactMagic,
		Version:     artifactVersion,
		Kind:        kindCode(kind),
		Width:       uint32(g.Width),          //nolint:gosec // validated geometry
		Projections: uint32(g.NumProjections), //nolint:gosec // validated geometry
		Slices:      uint32(g.NumSlices),      //nolint:gosec // validated geometry
		Count:       uint32(len(payload)),     //nolint:gosec // bounded by geometry
	}

	buf := make([]byte, 0, headerSize+4*len(payload))
	buf, err := binary.Append(buf, binary.LittleEndian, h)
	if err != nil {
		return err
	}
	for _, v := range payload {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	}
	return os.WriteFile(path, buf, domain.FilePerm)
}

var errArtifactFormat = errors.New("malformed operator artifact")

// readArtifact loads an artifact and checks that it was built for g.
func readArtifact(path string, kind domain.ArtifactKind, g domain.Geometry, count int) ([]float64, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file in our work dir
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, zerr.With(zerr.Wrap(errArtifactFormat, "artifact truncated"), "bytes", len(data))
	}

	var h artifactHeader
	if _, err := binary.Decode(data[:headerSize], binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	switch {
	case h.Magic != artifactMagic:
		return nil, zerr.Wrap(errArtifactFormat, "bad magic")
	case h.Version != artifactVersion:
		return nil, zerr.With(zerr.Wrap(errArtifactFormat, "unsupported artifact version"), "version", h.Version)
	case h.Kind != kindCode(kind):
		return nil, zerr.With(zerr.Wrap(errArtifactFormat, "artifact kind mismatch"), "kind", string(kind))
	case int(h.Width) != g.Width || int(h.Projections) != g.NumProjections || int(h.Slices) != g.NumSlices:
		return nil, zerr.With(zerr.Wrap(errArtifactFormat, "artifact built for another geometry"),
			"artifact_key", domain.DeriveKey(domain.Geometry{
				Width: int(h.Width), NumProjections: int(h.Projections), NumSlices: int(h.Slices),
			}).String())
	case int(h.Count) != count || len(data) != headerSize+4*count:
		return nil, zerr.With(zerr.Wrap(errArtifactFormat, "artifact payload size mismatch"), "count", h.Count)
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[headerSize+4*i:])))
	}
	return out, nil
}
