package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

func TestAllCategoriesIsACopy(t *testing.T) {
	all := AllCategories()
	require.Len(t, all, 8)
	assert.Equal(t, NginxAccess, all[0])
	assert.Equal(t, NewRelic, all[7])

	all[0] = "mutated"
	assert.Equal(t, NginxAccess, AllCategories()[0])
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("php-slow")
	require.NoError(t, err)
	assert.Equal(t, PhpSlow, c)
	assert.Equal(t, "php-slow.log", c.FileName())

	_, err = ParseCategory("apache-access")
	assert.True(t, errors.IsValidation(err))
}

func TestParseSiteEnv(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EnvironmentRef
		wantErr bool
	}{
		{name: "simple", input: "mysite.live", want: EnvironmentRef{Site: "mysite", Env: "live"}},
		{name: "dotted site splits on last dot", input: "my.site.dev", want: EnvironmentRef{Site: "my.site", Env: "dev"}},
		{name: "multidev", input: "shop.pr-42", want: EnvironmentRef{Site: "shop", Env: "pr-42"}},
		{name: "missing env", input: "mysite.", wantErr: true},
		{name: "missing site", input: ".live", wantErr: true},
		{name: "no dot", input: "mysite", wantErr: true},
		{name: "shell metacharacters", input: "a;rm -rf.live", wantErr: true},
		{name: "path traversal", input: "...live", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSiteEnv(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("10.0.0.1"))
	assert.True(t, ValidIdentifier("a1b2-c3_d4"))
	assert.False(t, ValidIdentifier(""))
	assert.False(t, ValidIdentifier(".."))
	assert.False(t, ValidIdentifier("a/b"))
	assert.False(t, ValidIdentifier("$(id)"))
	assert.False(t, ValidIdentifier(".hidden"))
}

func TestHostString(t *testing.T) {
	h := Host{Role: RoleDB, Address: "10.1.2.3"}
	assert.Equal(t, "dbserver/10.1.2.3", h.String())
}
