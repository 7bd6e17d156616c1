package rcm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()

	// Two bundles under the root, one of them nested with metadata/.
	for _, spec := range []bundleSpec{
		{width: 4, height: 2, productType: "GRD"},
		{width: 8, height: 4, productType: "SLC", sampleType: "Complex", bits: 32, underMetadata: true},
	} {
		writeBundleAt(t, root, spec)
	}

	// A decoy product.xml from another mission is skipped silently.
	decoyDir := filepath.Join(root, "decoy")
	require.NoError(t, os.MkdirAll(decoyDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(decoyDir, "product.xml"),
		[]byte(`<product xmlns="someOtherSchema"><x/></product>`), 0o644))

	result, err := ScanDirectory(root, ScanOptions{Workers: 2})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Empty(t, result.Errors)

	types := []string{result.Products[0].ProductType, result.Products[1].ProductType}
	assert.ElementsMatch(t, []string{"GRD", "SLC"}, types)
}

func TestScanDirectory_CollectsParseErrors(t *testing.T) {
	root := t.TempDir()

	// RCM namespace but degenerate geometry.
	writeBundleAt(t, root, bundleSpec{width: 1, height: 2})

	result, err := ScanDirectory(root, ScanOptions{})
	require.NoError(t, err)

	assert.Empty(t, result.Products)
	require.Len(t, result.Errors, 1)
	for _, e := range result.Errors {
		assert.ErrorIs(t, e, ErrBadGeometry)
	}
}

// writeBundleAt writes a bundle into a fresh subdirectory of root.
func writeBundleAt(t *testing.T, root string, spec bundleSpec) string {
	t.Helper()
	dir, err := os.MkdirTemp(root, "bundle-*")
	require.NoError(t, err)
	writeBundleInto(t, dir, spec)
	return dir
}
