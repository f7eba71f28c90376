package backup

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"notas/internal/store"
)

// maxEntrySize bounds how much of a single archive entry is read into memory.
const maxEntrySize = 256 << 20

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// encodeArchive writes manifest.json followed by each file, in manifest order,
// into a gzip-compressed tar stream.
func encodeArchive(manifest *Manifest, files map[string][]byte) ([]byte, error) {
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	write := func(name string, data []byte) error {
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o600,
			Size:    int64(len(data)),
			ModTime: manifest.CreatedAt,
			Format:  tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(data)
		return err
	}

	if err := write(manifestName, manifestData); err != nil {
		return nil, err
	}
	for _, entry := range manifest.Files {
		if err := write(entry.Name, files[entry.Name]); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readArchive loads the manifest and every entry of the archive at path.
func readArchive(path string) (*Manifest, map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, invalidf("%s does not exist", path)
		}
		return nil, nil, &store.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, invalidf("%s is not gzip compressed: %v", path, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	entries := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, invalidf("%s: reading entries: %v", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size > maxEntrySize {
			return nil, nil, invalidf("%s: entry %s is too large", path, hdr.Name)
		}
		if _, dup := entries[hdr.Name]; dup {
			return nil, nil, invalidf("%s: duplicate entry %s", path, hdr.Name)
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxEntrySize))
		if err != nil {
			return nil, nil, invalidf("%s: reading %s: %v", path, hdr.Name, err)
		}
		entries[hdr.Name] = data
	}

	raw, ok := entries[manifestName]
	if !ok {
		return nil, nil, invalidf("%s: missing %s", path, manifestName)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, nil, invalidf("%s: unreadable manifest: %v", path, err)
	}
	manifest.Path = path
	return &manifest, entries, nil
}

// verify checks an archive's content against its manifest and the store
// format this build understands.
func verify(manifest *Manifest, entries map[string][]byte) error {
	if manifest.SchemaVersion > store.SchemaVersion {
		return &store.SchemaVersionError{Path: manifest.Path, Found: manifest.SchemaVersion, Supported: store.SchemaVersion}
	}
	if manifest.SchemaVersion < 1 {
		return invalidf("%s: manifest has no schema version", manifest.Path)
	}

	seen := make(map[Role]bool)
	for _, entry := range manifest.Files {
		switch entry.Role {
		case RoleInvoices, RoleCustomers, RoleConfig:
		default:
			return invalidf("%s: unknown role %q for %s", manifest.Path, entry.Role, entry.Name)
		}
		if seen[entry.Role] {
			return invalidf("%s: role %s listed twice", manifest.Path, entry.Role)
		}
		seen[entry.Role] = true

		data, ok := entries[entry.Name]
		if !ok {
			return invalidf("%s: missing %s", manifest.Path, entry.Name)
		}
		if int64(len(data)) != entry.Size {
			return invalidf("%s: %s has %d bytes, manifest says %d", manifest.Path, entry.Name, len(data), entry.Size)
		}
		if checksum(data) != entry.SHA256 {
			return invalidf("%s: checksum mismatch for %s", manifest.Path, entry.Name)
		}

		if err := decodes(entry.Role, data); err != nil {
			var sv *store.SchemaVersionError
			if errors.As(err, &sv) {
				sv.Path = manifest.Path + ":" + entry.Name
				return sv
			}
			return invalidf("%s: %s does not decode: %v", manifest.Path, entry.Name, err)
		}
	}

	for _, role := range []Role{RoleInvoices, RoleCustomers} {
		if !seen[role] {
			return invalidf("%s: no %s file", manifest.Path, role)
		}
	}
	return nil
}

func stamp(t time.Time) string {
	return t.Format("20060102_150405")
}
