package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validModel = `from btcvol.tracker import TrackerBase
import numpy as np


class GarchTracker(TrackerBase):
    def predict(self, asset, horizon, step):
        return np.float64(0.5)
`

type cliEnv struct {
	submissionDir string
	modelsConfig  string
}

func setupEnv(t *testing.T) cliEnv {
	t.Helper()

	root := t.TempDir()
	env := cliEnv{
		submissionDir: filepath.Join(root, "submissions"),
		modelsConfig:  filepath.Join(root, "models.dev.yml"),
	}

	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("BTCVOL_SUBMISSION_DIR", env.submissionDir)
	t.Setenv("BTCVOL_MODELS_CONFIG", env.modelsConfig)

	return env
}

func writeModel(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSubmitPythonModelNoDeploy(t *testing.T) {
	env := setupEnv(t)
	model := writeModel(t, "my_model.py", validModel)

	stdout, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Submission my-model")
	assert.Contains(t, stdout, "Tracker class: GarchTracker")
	assert.Contains(t, stdout, "requires numpy>=1.24.0")
	assert.Contains(t, stdout, "Skipping deployment")

	bundleDir := filepath.Join(env.submissionDir, "my-model")
	for _, name := range []string{"main.py", "requirements.txt", "submission.toml"} {
		_, statErr := os.Stat(filepath.Join(bundleDir, name))
		assert.NoError(t, statErr, name)
	}

	config, err := os.ReadFile(env.modelsConfig)
	require.NoError(t, err)
	assert.Contains(t, string(config), "name: my-model")
	assert.Contains(t, string(config), "crunch_id: btcvol")
	assert.Contains(t, string(config), "desired_state: RUNNING")
}

func TestSubmitNotebookNoDeploy(t *testing.T) {
	env := setupEnv(t)

	nb := `{
		"cells": [
			{"cell_type": "markdown", "source": ["# GARCH baseline"]},
			{"cell_type": "code", "source": ["!pip install numpy\n"]},
			{"cell_type": "code", "source": ["from btcvol.tracker import TrackerBase\n", "import numpy as np\n"]},
			{"cell_type": "code", "source": ["class NotebookTracker(TrackerBase):\n", "    def predict(self, asset, horizon, step):\n", "        return np.float64(1.0)\n"]}
		]
	}`
	model := writeModel(t, "GARCH_Baseline.ipynb", nb)

	stdout, _, err := executeCLI(t, model, "--name", "garch-nb", "--no-deploy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Tracker class: NotebookTracker")

	code, err := os.ReadFile(filepath.Join(env.submissionDir, "garch-nb", "main.py"))
	require.NoError(t, err)
	assert.NotContains(t, string(code), "pip install")
	assert.NotContains(t, string(code), "GARCH baseline")
	assert.Contains(t, string(code), "class NotebookTracker(TrackerBase):")
}

func TestSubmitRejectsUnknownExtension(t *testing.T) {
	setupEnv(t)
	model := writeModel(t, "model.txt", validModel)

	_, _, err := executeCLI(t, model, "--no-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be .py or .ipynb")
}

func TestSubmitRejectsTraversalName(t *testing.T) {
	env := setupEnv(t)
	model := writeModel(t, "my_model.py", validModel)

	_, _, err := executeCLI(t, model, "--name", "../../etc", "--no-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid submission name")

	_, statErr := os.Stat(env.submissionDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmitRejectsModelWithoutTracker(t *testing.T) {
	setupEnv(t)
	model := writeModel(t, "my_model.py", "x = 1\n")

	_, _, err := executeCLI(t, model, "--no-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no TrackerBase subclass found")
}

func TestSubmitCollisionRequiresForce(t *testing.T) {
	env := setupEnv(t)
	model := writeModel(t, "my_model.py", validModel)

	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)

	_, _, err = executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, model, "--name", "my-model", "--no-deploy", "--force")
	require.NoError(t, err)

	config, err := os.ReadFile(env.modelsConfig)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(config, []byte("name: my-model")), "config:\n%s", config)
}

func TestSubmitWarnsOnUnpinnedPackage(t *testing.T) {
	setupEnv(t)
	model := writeModel(t, "my_model.py", "import mystery_lib\n\n"+validModel)

	stdout, stderr, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "requires mystery_lib")
	assert.Contains(t, stderr, "no pinned version for \"mystery_lib\"")
}

func TestSubmitPreservesUnrelatedConfigEntries(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(env.modelsConfig, []byte(`models:
  - id: "1"
    name: seeded
    submission_id: model-1
    crunch_id: btcvol
    desired_state: RUNNING
    cruncher_id: test_1
`), 0o644))

	model := writeModel(t, "my_model.py", validModel)
	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)

	config, err := os.ReadFile(env.modelsConfig)
	require.NoError(t, err)
	assert.Contains(t, string(config), "name: seeded")
	assert.Contains(t, string(config), "name: my-model")
}

func TestSubmitMalformedConfigAbortsWithoutWriting(t *testing.T) {
	env := setupEnv(t)
	malformed := "models: [\n"
	require.NoError(t, os.WriteFile(env.modelsConfig, []byte(malformed), 0o644))

	model := writeModel(t, "my_model.py", validModel)
	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode models config")

	config, err := os.ReadFile(env.modelsConfig)
	require.NoError(t, err)
	assert.Equal(t, malformed, string(config))
}

func TestListShowsRegisteredModels(t *testing.T) {
	env := setupEnv(t)
	model := writeModel(t, "my_model.py", validModel)

	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, "list", "--config", env.modelsConfig)
	require.NoError(t, err)
	assert.Contains(t, stdout, "my-model")
	assert.Contains(t, stdout, "RUNNING")
}

func TestConfigFileProvidesPaths(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".btcvol"), 0o755))

	submissionDir := filepath.Join(root, "submissions")
	modelsConfig := filepath.Join(root, "models.dev.yml")
	configToml := fmt.Sprintf("[models]\npath = %q\n\n[submissions]\ndir = %q\n", modelsConfig, submissionDir)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".btcvol", "config.toml"), []byte(configToml), 0o644))

	t.Setenv("HOME", home)
	t.Setenv("BTCVOL_SUBMISSION_DIR", "")
	t.Setenv("BTCVOL_MODELS_CONFIG", "")

	model := writeModel(t, "my_model.py", validModel)
	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(submissionDir, "my-model", "main.py"))
	require.NoError(t, err)

	config, err := os.ReadFile(modelsConfig)
	require.NoError(t, err)
	assert.Contains(t, string(config), "name: my-model")
}

func TestEnvOverridesConfigFileSubmissionDir(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".btcvol"), 0o755))

	fromConfig := filepath.Join(root, "from-config")
	fromEnv := filepath.Join(root, "from-env")
	modelsConfig := filepath.Join(root, "models.dev.yml")
	configToml := fmt.Sprintf("[models]\npath = %q\n\n[submissions]\ndir = %q\n", modelsConfig, fromConfig)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".btcvol", "config.toml"), []byte(configToml), 0o644))

	t.Setenv("HOME", home)
	t.Setenv("BTCVOL_SUBMISSION_DIR", fromEnv)
	t.Setenv("BTCVOL_MODELS_CONFIG", "")

	model := writeModel(t, "my_model.py", validModel)
	_, _, err := executeCLI(t, model, "--name", "my-model", "--no-deploy")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(fromEnv, "my-model", "main.py"))
	require.NoError(t, err)
	_, statErr := os.Stat(fromConfig)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOrchestratorSubcommandsExposeContainerOverride(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	assert.NotNil(t, root.Flags().Lookup("container"))
	for _, name := range []string{"status", "logs"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.NotNil(t, sub.Flags().Lookup("container"), name)
	}
}

func TestStatusRequiresID(t *testing.T) {
	setupEnv(t)

	_, _, err := executeCLI(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"id\" not set")
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestMissingModelFileArgFails(t *testing.T) {
	setupEnv(t)

	_, _, err := executeCLI(t)
	require.Error(t, err)
}
