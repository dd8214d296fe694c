package java

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/structscan/location"
	"github.com/c360studio/structscan/structure"
)

func scanFile(t *testing.T, path string) []*structure.Descriptor {
	t.Helper()

	var out []*structure.Descriptor
	s := New(nil)
	err := s.ScanFile(context.Background(), location.Location{Prefix: "test"}, path,
		func(st *structure.Descriptor) error {
			out = append(out, st)
			return nil
		})
	require.NoError(t, err)
	return out
}

func byName(t *testing.T, descs []*structure.Descriptor, name string) *structure.Descriptor {
	t.Helper()
	for _, d := range descs {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no descriptor named %s", name)
	return nil
}

func TestScanMethodAnnotations(t *testing.T) {
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "app", "PostHandler.java"))
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, structure.KindClass, d.Kind)
	assert.Equal(t, "com.acme.app.PostHandler", d.QualifiedName)
	assert.Equal(t, "com.acme.app", d.Package)
	assert.False(t, d.Abstract)
	require.Len(t, d.Methods, 4)

	onSave := d.Methods[0]
	assert.Equal(t, "onSave", onSave.Name)
	assert.Equal(t, structure.VisibilityPublic, onSave.Visibility)
	require.Len(t, onSave.Attributes, 1)
	attr := onSave.Attributes[0]
	assert.Equal(t, "io.c360.frame.hooks.Action", attr.Type)
	assert.Equal(t, "save_post", attr.StringArg("value", ""))

	// Repeated annotations surface in source order with their own arguments.
	lifecycle := d.Methods[1]
	require.Len(t, lifecycle.Attributes, 2)
	assert.Equal(t, "init", lifecycle.Attributes[0].StringArg("value", ""))
	assert.Equal(t, int64(20), lifecycle.Attributes[0].IntArg("priority", 10))
	assert.Equal(t, int64(2), lifecycle.Attributes[0].IntArg("acceptedArgs", 1))
	assert.Equal(t, "shutdown", lifecycle.Attributes[1].StringArg("value", ""))

	filterTitle := d.Methods[2]
	assert.Equal(t, structure.VisibilityProtected, filterTitle.Visibility)
	assert.Equal(t, "io.c360.frame.hooks.Filter", filterTitle.Attributes[0].Type)

	assert.Empty(t, d.Methods[3].Attributes)
}

func TestScanAbstractClass(t *testing.T) {
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "app", "AbstractHandler.java"))
	require.Len(t, descs, 1)
	assert.True(t, descs[0].Abstract)
	assert.True(t, descs[0].HasMethodAttribute("io.c360.frame.hooks.Action"))
}

func TestScanNeverExecutesCode(t *testing.T) {
	// The class throws in its constructor and calls System.exit; a purely
	// syntactic scan is unaffected.
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "app", "ThrowingProvider.java"))
	require.Len(t, descs, 1)
	assert.Equal(t, []string{"io.c360.frame.container.ServiceProvider"}, descs[0].Implements)
}

func TestScanClassAnnotationAndNestedTypes(t *testing.T) {
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "types", "ProductType.java"))
	require.Len(t, descs, 3)

	product := byName(t, descs, "ProductType")
	assert.Equal(t, "com.acme.types.ProductType", product.QualifiedName)
	assert.Equal(t, "com.acme.types.BaseType", product.Parent)
	assert.Equal(t, []string{"com.acme.types.Registrable"}, product.Implements)

	require.Len(t, product.Attributes, 1)
	ct := product.Attributes[0]
	assert.Equal(t, "io.c360.frame.registry.ContentType", ct.Type)
	assert.Equal(t, "product", ct.StringArg("value", ""))
	assert.True(t, ct.BoolArg("hierarchical", false))
	assert.False(t, ct.BoolArg("isPublic", true))

	brand := byName(t, descs, "Brand")
	assert.Equal(t, "com.acme.types.ProductType.Brand", brand.QualifiedName)
	require.Len(t, brand.Attributes, 1)
	tax := brand.Attributes[0]
	v, ok := tax.Arg("objectTypes")
	require.True(t, ok)
	assert.Equal(t, []string{"product", "bundle"}, v.Strings())

	status := byName(t, descs, "Status")
	assert.Equal(t, structure.KindEnum, status.Kind)
	assert.Equal(t, "com.acme.types.ProductType.Status", status.QualifiedName)
	require.Len(t, status.Methods, 1)
	assert.Equal(t, "visible", status.Methods[0].Name)
}

func TestScanSiblingTypesInOneFile(t *testing.T) {
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "types", "BaseType.java"))
	require.Len(t, descs, 2)

	base := byName(t, descs, "BaseType")
	assert.True(t, base.Abstract)
	assert.Equal(t, structure.KindInterface, byName(t, descs, "Registrable").Kind)
}

func TestScanImportResolution(t *testing.T) {
	descs := scanFile(t, filepath.Join("testdata", "src", "com", "acme", "types", "ImportStyles.java"))
	require.Len(t, descs, 1)

	d := descs[0]
	// Single-type import wins; java.lang covers Runnable; the wildcard
	// import qualifies the otherwise unknown annotation.
	assert.Equal(t, []string{"java.lang.Runnable", "io.c360.frame.console.ConsoleCommand"}, d.Implements)
	require.NotEmpty(t, d.Attributes)
	assert.Equal(t, "io.c360.frame.console.Command", d.Attributes[0].Type)
}

func TestScanMalformedFile(t *testing.T) {
	// Tree-sitter recovers from syntax errors; whatever parses is reported
	// and nothing panics.
	s := New(nil)
	err := s.ScanFile(context.Background(), location.Location{}, filepath.Join("testdata", "broken", "Broken.java"),
		func(st *structure.Descriptor) error { return nil })
	assert.NoError(t, err)
}
