// Package unityprobe asks a Unity editor binary what version it is by
// launching it headless and parsing the version it reports.
package unityprobe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/CirnoV/vrc-get/vps"
)

// DefaultTimeout bounds how long a probed binary may take to report its
// version before the probe fails.
const DefaultTimeout = 10 * time.Second

// Probe launches the binary at path in batch mode and parses the version it
// prints. The editor is pointed at a nonexistent project path so it exits
// immediately instead of opening anything.
func Probe(ctx context.Context, path string) (vps.UnityVersion, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path,
		"-batchmode",
		"-quit",
		"-noUpm",
		"-nographics",
		"-projectPath", fmt.Sprintf("vrc-get-probe-%d", time.Now().UnixNano()),
		"-logfile",
	)

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return vps.UnityVersion{}, errors.Wrapf(ctx.Err(), "probing %s", path)
	}
	if err != nil {
		return vps.UnityVersion{}, errors.Wrapf(err, "invalid unity installation at %s", path)
	}

	return ParseOutput(out)
}

// ParseOutput extracts the editor version from probe output: the first
// space-delimited token of the first line.
func ParseOutput(out []byte) (vps.UnityVersion, error) {
	text := strings.TrimSpace(string(out))
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		text = text[:i]
	}

	v, err := vps.ParseUnityVersion(text)
	if err != nil {
		return vps.UnityVersion{}, errors.Wrapf(err, "unexpected probe output %q", text)
	}
	return v, nil
}
