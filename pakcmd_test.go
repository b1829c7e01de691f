package pakcmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z0mbix/pakcmd"
	"github.com/z0mbix/pakcmd/internal/logging"
	"github.com/z0mbix/pakcmd/internal/probe/probetest"
)

func knownResults() []string {
	results := []string{pakcmd.NotFound}
	for _, f := range pakcmd.DefaultFamilies() {
		results = append(results, f.Candidates...)
		if f.Constant != "" {
			results = append(results, f.Constant)
		}
	}
	return results
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPackageManager_Host(t *testing.T) {
	got := pakcmd.PackageManager()
	assert.NotEmpty(t, got)
	assert.Contains(t, knownResults(), got)
}

func TestCheckCommand_Host(t *testing.T) {
	if runtime.GOOS == "android" || runtime.GOOS == "ios" {
		t.Skip("command lookup is disabled on mobile platforms")
	}
	assert.True(t, pakcmd.CheckCommand("cd"))
	assert.False(t, pakcmd.CheckCommand("uwu7"))
}

func TestGetOS_Host(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Skip("result depends on the host distribution")
	}
	got, err := pakcmd.GetOS()
	require.NoError(t, err)
	assert.Equal(t, pakcmd.New().Platform(), got)
}

func TestDetector_PackageManager(t *testing.T) {
	tests := []struct {
		name       string
		platform   string
		installed  []string
		want       string
		wantProbes []string
	}{
		{"debian", "linux", []string{"apt"}, "apt", []string{"apt"}},
		{"arch", "linux", []string{"pacman", "nix-env"}, "pacman", []string{"apt", "dnf", "zypper", "pacman"}},
		{"bare linux", "linux", nil, pakcmd.NotFound, []string{"apt", "dnf", "zypper", "pacman", "emerge", "nix-env"}},
		{"macos prefers brew", "darwin", []string{"port", "brew"}, "brew", []string{"brew"}},
		{"windows", "windows", []string{"winget"}, "winget", []string{"winget"}},
		{"freebsd", "freebsd", nil, "pkg", nil},
		{"solaris", "solaris", nil, "pkg", nil},
		{"openbsd", "openbsd", nil, "pkg_add", nil},
		{"netbsd", "netbsd", nil, "pkgsrc", nil},
		{"unknown", "plan9", []string{"apt"}, pakcmd.NotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := probetest.New(tt.installed...)
			d := pakcmd.New(
				pakcmd.WithPlatform(tt.platform),
				pakcmd.WithRunner(fake),
				pakcmd.WithLogger(logging.ForTest(t)),
			)

			assert.Equal(t, tt.want, d.PackageManager(context.Background()))
			if tt.wantProbes == nil {
				assert.Zero(t, fake.Spawned())
			} else {
				assert.Equal(t, tt.wantProbes, fake.Names())
			}
		})
	}
}

func TestDetector_VerifyConstants(t *testing.T) {
	fake := probetest.New()
	d := pakcmd.New(
		pakcmd.WithPlatform("freebsd"),
		pakcmd.WithRunner(fake),
		pakcmd.WithVerifyConstants(true),
	)

	assert.Equal(t, pakcmd.NotFound, d.PackageManager(context.Background()))
	assert.Equal(t, []string{"pkg"}, fake.Names())
}

func TestDetector_CheckCommand_MobileNeverSpawns(t *testing.T) {
	for _, platform := range []string{"android", "ios"} {
		t.Run(platform, func(t *testing.T) {
			fake := probetest.New("sh", "where")
			d := pakcmd.New(pakcmd.WithPlatform(platform), pakcmd.WithRunner(fake))

			for _, name := range []string{"cd", "ls", "uwu7", "sh"} {
				assert.False(t, d.CheckCommand(context.Background(), name))
			}
			assert.Zero(t, fake.Spawned())
		})
	}
}

func TestDetector_CheckCommand_Windows(t *testing.T) {
	fake := probetest.New("where")
	d := pakcmd.New(pakcmd.WithPlatform("windows"), pakcmd.WithRunner(fake))

	assert.True(t, d.CheckCommand(context.Background(), "git"))
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, "where git", fake.Calls()[0].String())
}

func TestDetector_OS(t *testing.T) {
	t.Run("distribution name", func(t *testing.T) {
		path := writeFile(t, "os-release", "NAME=\"Example Distro\"\nVERSION_ID=\"1\"\n")
		d := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithOSRelease(path))

		got, err := d.OS()
		require.NoError(t, err)
		assert.Equal(t, "Example Distro", got)
	})

	t.Run("empty file", func(t *testing.T) {
		d := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithOSRelease(writeFile(t, "os-release", "")))

		got, err := d.OS()
		require.NoError(t, err)
		assert.Equal(t, "linux", got)
	})

	t.Run("non-linux ignores the file", func(t *testing.T) {
		d := pakcmd.New(pakcmd.WithPlatform("openbsd"), pakcmd.WithOSRelease("/nonexistent"))

		got, err := d.OS()
		require.NoError(t, err)
		assert.Equal(t, "openbsd", got)
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "os-release", "NAME=Example\n")
		d := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithOSRelease(path))

		_, err := d.OS()
		require.Error(t, err)
		assert.ErrorIs(t, err, pakcmd.ErrDistroFileMalformed)

		var lookupErr *pakcmd.DistroLookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.Equal(t, path, lookupErr.Path)
	})

	t.Run("unavailable", func(t *testing.T) {
		d := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithOSRelease(filepath.Join(t.TempDir(), "missing")))

		_, err := d.OS()
		assert.ErrorIs(t, err, pakcmd.ErrDistroFileUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWithProbeTimeout(t *testing.T) {
	hang := pakcmd.RunnerFunc(func(ctx context.Context, name string, args ...string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := pakcmd.New(
		pakcmd.WithPlatform("windows"),
		pakcmd.WithRunner(hang),
		pakcmd.WithProbeTimeout(20*time.Millisecond),
	)

	start := time.Now()
	assert.Equal(t, pakcmd.NotFound, d.PackageManager(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWithFamilies(t *testing.T) {
	fake := probetest.New("apk")
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithRunner(fake),
		pakcmd.WithFamilies(pakcmd.Family{Name: "alpine", Platforms: []string{"linux"}, Candidates: []string{"apk"}}),
		pakcmd.WithVersionArg("--help"),
	)

	assert.Equal(t, "apk", d.PackageManager(context.Background()))
	assert.Equal(t, "apk --help", fake.Calls()[0].String())
}

func TestLoadConfig_WithConfig(t *testing.T) {
	release := writeFile(t, "os-release", "PRETTY=\"Configured Distro\"\n")
	path := writeFile(t, "pakcmd.hcl", `
variable "release" {
  default = "/etc/os-release"
}

os_release  = var.release
version_arg = "-v"

family "linux" {
  candidates = ["apk", "apt"]
}
`)

	cfg, err := pakcmd.LoadConfigWithVars(path, map[string]string{"release": release})
	require.NoError(t, err)

	fake := probetest.New("apt")
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithRunner(fake),
		pakcmd.WithConfig(cfg),
	)

	assert.Equal(t, "apt", d.PackageManager(context.Background()))
	assert.Equal(t, []string{"apk", "apt"}, fake.Names())
	assert.Equal(t, "apt -v", fake.Calls()[1].String())

	name, err := d.OS()
	require.NoError(t, err)
	assert.Equal(t, "Configured Distro", name)

	// families outside the override keep their defaults
	bsd := pakcmd.New(pakcmd.WithPlatform("netbsd"), pakcmd.WithRunner(fake), pakcmd.WithConfig(cfg))
	assert.Equal(t, "pkgsrc", bsd.PackageManager(context.Background()))
}

func TestLoadConfig_RelativeOSRelease(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "os-release"), []byte("NAME=\"Rel\"\n"), 0644))
	path := filepath.Join(dir, "pakcmd.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`os_release = "os-release"`+"\n"), 0644))

	// resolved against the config file, not the working directory
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := pakcmd.LoadConfig(path)
	require.NoError(t, err)

	name, err := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithConfig(cfg)).OS()
	require.NoError(t, err)
	assert.Equal(t, "Rel", name)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := pakcmd.LoadConfig(writeFile(t, "pakcmd.hcl", `family "linux" {}`))
	assert.Error(t, err)
}

func TestLoadConfig_NoDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := pakcmd.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Families)
	assert.Nil(t, cfg.OSRelease)
}

func TestDetector_Report(t *testing.T) {
	path := writeFile(t, "os-release", "NAME=\"Example Distro\"\nID=debian\nVERSION_ID=\"12\"\n")
	fake := probetest.New("apt", "nix-env", "sh")
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithRunner(fake),
		pakcmd.WithOSRelease(path),
	)

	r := d.Report(context.Background(), "git")
	assert.Equal(t, "Example Distro", r.Name)
	assert.Equal(t, "apt", r.PackageManager)
	assert.Equal(t, []string{"apt", "nix-env"}, r.PackageManagers)
	assert.True(t, r.Commands["git"])

	var buf bytes.Buffer
	require.NoError(t, pakcmd.EncodeReport(&buf, r, "json"))
	assert.Contains(t, buf.String(), `"package_manager": "apt"`)

	assert.Error(t, pakcmd.EncodeReport(&buf, r, "xml"))

	buf.Reset()
	require.NoError(t, pakcmd.RenderReport(&buf, r, `{{ .PackageManager | upper }}`))
	assert.Equal(t, "APT", buf.String())

	buf.Reset()
	pakcmd.PrintReport(&buf, r, false)
	assert.Contains(t, buf.String(), "package manager:  apt")
}

func TestPrintDrift(t *testing.T) {
	fake := probetest.New("apt")
	d := pakcmd.New(pakcmd.WithPlatform("linux"), pakcmd.WithRunner(fake), pakcmd.WithOSRelease("/nonexistent"))
	before := d.Report(context.Background())

	fake.Succeed("dnf")
	fake.Fail("apt")
	after := d.Report(context.Background())

	var buf bytes.Buffer
	n := pakcmd.PrintDrift(&buf, before, after, false)
	assert.Equal(t, 3, n)
	assert.Contains(t, buf.String(), "package_manager")
}

func TestWithJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithRunner(probetest.New().Fail("apk")),
		pakcmd.WithFamilies(pakcmd.Family{Name: "alpine", Platforms: []string{"linux"}, Candidates: []string{"apk"}}),
		pakcmd.WithJSONLogging(&buf, slog.LevelDebug),
	)

	assert.Equal(t, pakcmd.NotFound, d.PackageManager(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry), "line: %s", lines[0])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "package manager probe failed", entry["msg"])
	assert.Equal(t, "apk", entry["candidate"])
}

func TestWithJSONLogging_Level(t *testing.T) {
	var buf bytes.Buffer
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithRunner(probetest.New().Fail("apk")),
		pakcmd.WithFamilies(pakcmd.Family{Name: "alpine", Platforms: []string{"linux"}, Candidates: []string{"apk"}}),
		pakcmd.WithJSONLogging(&buf, slog.LevelWarn),
	)

	d.PackageManager(context.Background())
	assert.Empty(t, buf.String())
}

func TestWithQuietLogging(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("reading a directory fails only on linux")
	}

	var buf bytes.Buffer
	d := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithOSRelease(t.TempDir()),
		pakcmd.WithJSONLogging(&buf, slog.LevelDebug),
	)
	name, err := d.OS()
	require.NoError(t, err)
	assert.Equal(t, "linux", name)
	assert.Contains(t, buf.String(), "failed to read os-release file")

	buf.Reset()
	quiet := pakcmd.New(
		pakcmd.WithPlatform("linux"),
		pakcmd.WithOSRelease(t.TempDir()),
		pakcmd.WithJSONLogging(&buf, slog.LevelDebug),
		pakcmd.WithQuietLogging(),
	)
	name, err = quiet.OS()
	require.NoError(t, err)
	assert.Equal(t, "linux", name)
	assert.Empty(t, buf.String())
}
