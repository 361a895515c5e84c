package playbook

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"             // Filesystem abstraction.
	"github.com/stretchr/testify/assert" // Test assertions e.g. equality.
	"github.com/stretchr/testify/mock"   // Mocking for tests.
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3" // YAML encoding.

	"github.com/mintel/elasticsearch-charm/internal/pkg/shell/mocks"
	"github.com/mintel/elasticsearch-charm/internal/pkg/testutil" // Testing utilities.
)

func setup(t *testing.T) (*Runner, *mocks.Runner, afero.Fs, func()) {
	logger, teardown := testutil.TestLogger(t)
	fs := afero.NewMemMapFs()
	sh := &mocks.Runner{}
	sh.Test(t)
	return New("/charm/playbook.yaml", fs, sh, logger), sh, fs, teardown
}

func readVars(t *testing.T, fs afero.Fs) map[string]interface{} {
	b, err := afero.ReadFile(fs, DefaultHostVarsPath)
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, yaml.Unmarshal(b, &vars))
	return vars
}

func TestRunner_Apply(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r, sh, fs, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		sh.On("Run", ctx, "ansible-playbook",
			[]string{"-c", "local", "/charm/playbook.yaml", "--tags", "config-changed"}).
			Run(func(mock.Arguments) {
				// Vars must be in place before the playbook runs.
				assert.Equal(t, "es-cluster", readVars(t, fs)["cluster_name"])
			}).
			Return([]byte("PLAY RECAP"), nil).Once()

		err := r.Apply(ctx, []string{"config-changed"}, map[string]interface{}{
			"cluster-name": "es-cluster",
			"heap-size":    "2g",
		})
		assert.NoError(t, err)
		sh.AssertExpectations(t)

		info, err := fs.Stat(DefaultHostVarsPath)
		require.NoError(t, err)
		assert.Equal(t, "-rw-------", info.Mode().Perm().String())
	})

	t.Run("multiple-tags", func(t *testing.T) {
		r, sh, _, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		sh.On("Run", ctx, "ansible-playbook",
			[]string{"-c", "local", "/charm/playbook.yaml", "--tags", "install,config-changed"}).
			Return([]byte(nil), nil).Once()

		assert.NoError(t, r.Apply(ctx, []string{"install", "config-changed"}, nil))
		sh.AssertExpectations(t)
	})

	t.Run("error", func(t *testing.T) {
		r, sh, _, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		sh.On("Run", ctx, "ansible-playbook", mock.Anything).
			Return([]byte(nil), errors.New("exit status 2")).Once()

		err := r.Apply(ctx, []string{"start"}, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "/charm/playbook.yaml")
	})
}

func TestRunner_WriteHostVars(t *testing.T) {
	r, _, fs, teardown := setup(t)
	defer teardown()

	require.NoError(t, fs.MkdirAll("/etc/ansible/host_vars", 0755))
	require.NoError(t, afero.WriteFile(fs, DefaultHostVarsPath, []byte("old_key: kept\ncluster_name: old\n"), 0644))

	require.NoError(t, r.WriteHostVars(map[string]interface{}{
		"cluster-name":     "new",
		"data__mountpoint": "/srv/elasticsearch",
	}))

	vars := readVars(t, fs)
	assert.Equal(t, "kept", vars["old_key"])
	assert.Equal(t, "new", vars["cluster_name"])
	assert.Equal(t, "/srv/elasticsearch", vars["data__mountpoint"])

	info, err := fs.Stat(DefaultHostVarsPath)
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())
}

func TestRunner_ReadHostVars(t *testing.T) {
	r, _, fs, teardown := setup(t)
	defer teardown()

	vars, err := r.ReadHostVars()
	assert.NoError(t, err)
	assert.Empty(t, vars)

	require.NoError(t, afero.WriteFile(fs, DefaultHostVarsPath, []byte(""), 0600))
	vars, err = r.ReadHostVars()
	assert.NoError(t, err)
	assert.NotNil(t, vars)

	require.NoError(t, afero.WriteFile(fs, DefaultHostVarsPath, []byte("- not\n- a map\n"), 0600))
	_, err = r.ReadHostVars()
	assert.Error(t, err)
}

func TestRelationVars(t *testing.T) {
	vars := RelationVars("nrpe-external-master", map[string]string{
		"private-address": "10.0.0.1",
		"nagios_hostname": "es-0",
	})
	assert.Equal(t, map[string]interface{}{
		"nrpe_external_master__private_address": "10.0.0.1",
		"nrpe_external_master__nagios_hostname": "es-0",
	}, vars)
}
