package facts

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/z0mbix/pakcmd/internal/probe"
)

// DefaultOSRelease is the system metadata file consulted on Linux.
const DefaultOSRelease = "/etc/os-release"

// OSFacts contains operating system information
type OSFacts struct {
	Name                string // platform identifier (linux, macos, windows)
	Family              string // OS family (debian, redhat, arch, darwin)
	Distribution        string // Distribution name (Ubuntu, Fedora)
	DistributionVersion string // Version (22.04, 39)
}

// OS returns the platform identifier, or on Linux the distribution name
// taken from the first line of the os-release file.
func (d *Detector) OS() (string, error) {
	platform := d.platform()
	if platform != "linux" {
		return platform, nil
	}
	return DistroName(d.osRelease(), d.logger())
}

// DistroName reads the first line of the os-release file at path and returns
// the text between its first and last double quote.
//
// An empty file yields "linux". A read error is logged and also yields
// "linux". An unopenable file or a first line without a quoted value is
// returned as a *DistroLookupError.
func DistroName(path string, logger *slog.Logger) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &DistroLookupError{
			Path: path,
			Kind: ErrDistroFileUnavailable,
			Err:  errors.Wrapf(err, "opening %s", path),
		}
	}
	defer func() { _ = file.Close() }()

	line, err := readFirstLine(file)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to read os-release file", "path", path, "error", err)
		}
		return "linux", nil
	}
	if line == "" {
		return "linux", nil
	}

	first := strings.IndexByte(line, '"')
	last := strings.LastIndexByte(line, '"')
	if first < 0 || first == last {
		return "", &DistroLookupError{
			Path: path,
			Kind: ErrDistroFileMalformed,
			Err:  errors.Newf("no quoted value in %q", strings.TrimRight(line, "\r\n")),
		}
	}

	return line[first+1 : last], nil
}

// readFirstLine returns the first line of r including its newline, or ""
// when r is empty.
func readFirstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !utf8.ValidString(line) {
		return "", errors.New("first line is not valid UTF-8")
	}
	return line, nil
}

// OSFacts collects OS-related facts. On Linux the full os-release file is
// parsed; a missing file leaves the family "unknown".
func (d *Detector) OSFacts(ctx context.Context) OSFacts {
	platform := d.platform()
	facts := OSFacts{
		Name: platform,
	}

	switch platform {
	case "linux":
		osRelease, err := parseOSRelease(d.osRelease())
		if err != nil {
			facts.Family = "unknown"
			return facts
		}

		facts.Distribution = osRelease["NAME"]
		facts.DistributionVersion = osRelease["VERSION_ID"]
		facts.Family = detectLinuxFamily(osRelease)

	case "macos":
		facts.Family = "darwin"
		facts.Distribution = "macOS"
		facts.DistributionVersion = d.commandOutput(ctx, "sw_vers", "-productVersion")

	case "freebsd":
		facts.Family = "freebsd"
		facts.Distribution = "FreeBSD"
		facts.DistributionVersion = d.commandOutput(ctx, "uname", "-r")

	case "openbsd":
		facts.Family = "openbsd"
		facts.Distribution = "OpenBSD"
		facts.DistributionVersion = d.commandOutput(ctx, "uname", "-r")

	case "netbsd":
		facts.Family = "netbsd"
		facts.Distribution = "NetBSD"
		facts.DistributionVersion = d.commandOutput(ctx, "uname", "-r")

	case "dragonfly":
		facts.Family = "dragonfly"
		facts.Distribution = "DragonFly BSD"
		facts.DistributionVersion = d.commandOutput(ctx, "uname", "-r")

	case "illumos", "solaris":
		facts.Family = platform
		facts.Distribution = d.illumosDistribution()
		facts.DistributionVersion = d.commandOutput(ctx, "uname", "-r")

	default:
		facts.Family = platform
	}

	return facts
}

// parseOSRelease reads and parses an os-release file into key/value pairs
func parseOSRelease(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	result := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		result[key] = strings.Trim(value, `"'`)
	}

	return result, scanner.Err()
}

// detectLinuxFamily determines the OS family from os-release ID and ID_LIKE
func detectLinuxFamily(osRelease map[string]string) string {
	id := strings.ToLower(osRelease["ID"])

	switch id {
	case "debian", "ubuntu", "linuxmint", "pop", "elementary", "kali", "raspbian":
		return "debian"
	case "fedora", "rhel", "centos", "rocky", "alma", "almalinux", "oracle", "ol", "amzn", "amazon":
		return "redhat"
	case "arch", "manjaro", "endeavouros", "garuda", "cachyos":
		return "arch"
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles":
		return "suse"
	case "alpine":
		return "alpine"
	case "gentoo":
		return "gentoo"
	case "void":
		return "void"
	case "nixos":
		return "nixos"
	}

	for _, like := range strings.Fields(strings.ToLower(osRelease["ID_LIKE"])) {
		switch like {
		case "debian", "ubuntu":
			return "debian"
		case "fedora", "rhel", "centos":
			return "redhat"
		case "arch":
			return "arch"
		case "suse", "opensuse":
			return "suse"
		}
	}

	return "unknown"
}

// illumosDistribution prefers os-release (OmniOS, OpenIndiana) and falls
// back to the first line of /etc/release (SmartOS, Solaris).
func (d *Detector) illumosDistribution() string {
	osRelease, err := parseOSRelease(d.osRelease())
	if err == nil {
		if name := osRelease["NAME"]; name != "" {
			return name
		}
	}

	data, err := os.ReadFile("/etc/release")
	if err == nil {
		line, _, _ := strings.Cut(string(data), "\n")
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return d.platform()
}

// commandOutput returns the trimmed stdout of a command, or "" when the
// runner cannot capture output or the command fails.
func (d *Detector) commandOutput(ctx context.Context, name string, args ...string) string {
	r, ok := d.runner().(probe.OutputRunner)
	if !ok {
		return ""
	}
	out, err := r.Output(ctx, name, args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
