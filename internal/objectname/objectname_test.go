package objectname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    *Name
		wantErr bool
	}{
		{
			name: "single property",
			raw:  "java.lang:type=Memory",
			want: &Name{Domain: "java.lang", Properties: []Property{{Key: "type", Value: "Memory"}}},
		},
		{
			name: "keeps property order",
			raw:  "domain:type=Foo,name=Bar",
			want: &Name{Domain: "domain", Properties: []Property{
				{Key: "type", Value: "Foo"},
				{Key: "name", Value: "Bar"},
			}},
		},
		{
			name:    "missing domain separator",
			raw:     "type=Foo",
			wantErr: true,
		},
		{
			name:    "no properties",
			raw:     "domain:",
			wantErr: true,
		},
		{
			name:    "property without key",
			raw:     "domain:=Foo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{pattern: "", name: "java.lang:type=Memory", want: true},
		{pattern: "*:*", name: "java.lang:type=Memory", want: true},
		{pattern: "java.lang:type=Memory", name: "java.lang:type=Memory", want: true},
		{pattern: "java.lang:type=Memory", name: "java.lang:type=Memory,extra=1", want: false},
		{pattern: "java.lang:type=Memory,*", name: "java.lang:type=Memory,extra=1", want: true},
		{pattern: "java.*:type=*", name: "java.nio:type=BufferPool", want: true},
		{pattern: "java.*:type=*", name: "java.nio:type=BufferPool,name=direct", want: false},
		{
			pattern: "com.mchange.v2.c3p0:type=PooledDataSource,*",
			name:    "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=1hge1",
			want:    true,
		},
		{pattern: "com.mchange.v2.c3p0:type=PooledDataSource,*", name: "java.lang:type=Memory", want: false},
		{pattern: "java.lang:name=?1", name: "java.lang:name=G1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.name))
		})
	}
}

func TestParsePattern_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParsePattern("no-separator")
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "com.mchange.v2.c3p0:type=PooledDataSource,", Root("com.mchange.v2.c3p0:type=PooledDataSource,*"))
	assert.Equal(t, "java.lang:type=Memory", Root("java.lang:type=Memory"))
}
