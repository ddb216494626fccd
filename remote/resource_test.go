package remote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/remoteresource/remote"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tag     string
		want    remote.Resource
		wantErr error
	}{
		{
			name: "defaults",
			tag:  "externalContextLookup=externalCtx,lookup=myResource",
			want: remote.NewResource("externalCtx", "myResource"),
		},
		{
			name: "flags off",
			tag:  "externalContextLookup=ctx,lookup=name,cache=false,validateOnDeployment=false",
			want: remote.Resource{ExternalContextLookup: "ctx", Lookup: "name"},
		},
		{
			name: "spaces and order",
			tag:  " lookup = name , cache=0,externalContextLookup=ctx ",
			want: remote.Resource{ExternalContextLookup: "ctx", Lookup: "name", ValidateOnDeployment: true},
		},
		{
			name: "names with slashes and dots",
			tag:  "externalContextLookup=java:comp/env,lookup=jdbc/orders.primary",
			want: remote.NewResource("java:comp/env", "jdbc/orders.primary"),
		},
		{name: "missing lookup", tag: "externalContextLookup=ctx", wantErr: remote.ErrInvalidResource},
		{name: "missing context", tag: "lookup=name", wantErr: remote.ErrInvalidResource},
		{name: "empty", tag: "", wantErr: remote.ErrInvalidTag},
		{name: "not key value", tag: "externalContextLookup=ctx,lookup", wantErr: remote.ErrInvalidTag},
		{name: "duplicate key", tag: "externalContextLookup=a,externalContextLookup=b,lookup=c", wantErr: remote.ErrInvalidTag},
		{name: "bad bool", tag: "externalContextLookup=a,lookup=b,cache=maybe", wantErr: remote.ErrInvalidTag},
		{name: "unknown key", tag: "externalContextLookup=a,lookup=b,ttl=5s", wantErr: remote.ErrInvalidTag},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := remote.ParseTag(tc.tag)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, remote.ErrInvalidTag)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewResource(t *testing.T) {
	t.Parallel()

	r := remote.NewResource("ctx", "name")
	assert.True(t, r.Cache)
	assert.True(t, r.ValidateOnDeployment)
	assert.Equal(t, remote.Key{Context: "ctx", Name: "name"}, r.Key())
	assert.Equal(t, `context "ctx", lookup "name"`, r.String())

	r = remote.NewResource("ctx", "name", remote.WithoutCache(), remote.WithoutDeploymentValidation())
	assert.False(t, r.Cache)
	assert.False(t, r.ValidateOnDeployment)
}

func TestResourceValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, remote.NewResource("ctx", "name").Validate())
	assert.ErrorIs(t, remote.NewResource(" ", "name").Validate(), remote.ErrInvalidResource)
	assert.ErrorIs(t, remote.NewResource("ctx", "").Validate(), remote.ErrInvalidResource)
}

type taggedFields struct {
	Conn    *Conn   `remote:"externalContextLookup=externalCtx,lookup=conn"`
	Greeter Greeter `remote:"externalContextLookup=externalCtx,lookup=greeter,cache=false"`
	Plain   string
}

type embeddedTagged struct {
	taggedFields
	Own string `remote:"externalContextLookup=own,lookup=name"`
}

func TestTagged(t *testing.T) {
	t.Parallel()

	fields, err := remote.Tagged[taggedFields]()
	require.NoError(t, err)
	require.Len(t, fields, 2)

	assert.Equal(t, "Conn", fields[0].Name())
	assert.Equal(t, "*remote_test.Conn", fields[0].Type().String())
	assert.Equal(t, remote.NewResource("externalCtx", "conn"), fields[0].Resource())

	assert.Equal(t, "Greeter", fields[1].Name())
	assert.False(t, fields[1].Resource().Cache)
}

func TestTagged_OnlyDirectFields(t *testing.T) {
	t.Parallel()

	fields, err := remote.Tagged[embeddedTagged]()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Own", fields[0].Name())
}

func TestTagged_NonStruct(t *testing.T) {
	t.Parallel()

	fields, err := remote.Tagged[int]()
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestTagged_Errors(t *testing.T) {
	t.Parallel()

	_, err := remote.Tagged[unexportedTagged]()
	assert.ErrorIs(t, err, remote.ErrUnexportedField)

	_, err = remote.Tagged[badTagService]()
	assert.ErrorIs(t, err, remote.ErrInvalidTag)
	assert.Contains(t, err.Error(), "badTagService.Conn")
}

func TestBind(t *testing.T) {
	t.Parallel()

	res := remote.NewResource("externalCtx", "myResource")
	f := remote.Bind("conn", func(s *explicitService) **Conn { return &s.conn }, res)

	assert.Equal(t, "conn", f.Name())
	assert.Equal(t, res, f.Resource())
	assert.Equal(t, "*remote_test.Conn", f.Type().String())
}
