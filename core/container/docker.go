package container

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DockerCLI implements Runtime by shelling out to the docker binary.
// The docker CLI is the only interface the target environments guarantee;
// talking to it directly keeps the runtime dependency surface identical to
// what the operator already has installed.
type DockerCLI struct {
	binary string
}

// NewDockerCLI creates a Runtime backed by the docker command-line client.
// The binary path defaults to "docker" resolved via PATH.
func NewDockerCLI(binary string) *DockerCLI {
	if binary == "" {
		binary = "docker"
	}
	return &DockerCLI{binary: binary}
}

// Available reports whether the docker binary can be resolved.
func (d *DockerCLI) Available() bool {
	_, err := exec.LookPath(d.binary)
	return err == nil
}

func (d *DockerCLI) run(ctx context.Context, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, d.binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("docker %s: %s", args[0], msg)
	}

	return stdout.String(), nil
}

// IsRunning reports whether the named container is running.
// A container unknown to the engine is reported as not running.
func (d *DockerCLI) IsRunning(ctx context.Context, name string) (bool, error) {
	out, err := d.run(ctx, nil, "inspect", "--format", "{{.State.Running}}", name)
	if err != nil {
		if strings.Contains(err.Error(), "No such object") ||
			strings.Contains(err.Error(), "No such container") {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// PublishesPort reports whether the container maps the given host TCP port.
func (d *DockerCLI) PublishesPort(ctx context.Context, name string, port int) (bool, error) {
	out, err := d.run(ctx, nil, "port", name, fmt.Sprintf("%d/tcp", port))
	if err != nil {
		return false, nil //nolint:nilerr // docker port exits non-zero when the port is unmapped
	}
	return strings.TrimSpace(out) != "", nil
}

// Stop stops a running container.
func (d *DockerCLI) Stop(ctx context.Context, name string) error {
	_, err := d.run(ctx, nil, "stop", name)
	return err
}

// Start starts a stopped container.
func (d *DockerCLI) Start(ctx context.Context, name string) error {
	_, err := d.run(ctx, nil, "start", name)
	return err
}

// Restart restarts a container.
func (d *DockerCLI) Restart(ctx context.Context, name string) error {
	_, err := d.run(ctx, nil, "restart", name)
	return err
}

// Signal delivers a signal to the container's main process.
func (d *DockerCLI) Signal(ctx context.Context, name, signal string) error {
	_, err := d.run(ctx, nil, "kill", "--signal", signal, name)
	return err
}

// CopyTo writes content to a path inside a running container.
// The write goes through a shell inside the container so the mode can be
// applied in the same step; the parent directory must already exist.
func (d *DockerCLI) CopyTo(ctx context.Context, name, path string, content []byte, mode os.FileMode) error {
	script := fmt.Sprintf("cat > %s && chmod %o %s", shellQuote(path), mode.Perm(), shellQuote(path))
	_, err := d.run(ctx, content, "exec", "-i", name, "sh", "-c", script)
	return err
}

// ReadFile reads a file from inside a running container.
func (d *DockerCLI) ReadFile(ctx context.Context, name, path string) ([]byte, error) {
	out, err := d.run(ctx, nil, "exec", name, "cat", path)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var _ Runtime = (*DockerCLI)(nil)
