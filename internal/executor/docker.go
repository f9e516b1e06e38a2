// Package executor is the local execution backend: one throwaway,
// locked-down docker container per run. It serves the same Backend
// interface as the remote client, with the catalog coming from the
// language registry instead of an upstream call.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/sirupsen/logrus"

	"coderoom/internal/engine"
	"coderoom/internal/language"
)

const workspaceDir = "/workspace"

type Docker struct {
	cli *client.Client
	log logrus.FieldLogger
}

func NewDocker(log logrus.FieldLogger) (*Docker, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, err
	}
	return &Docker{cli: cli, log: log}, nil
}

// Runtimes serves the catalog from the registered language specs; the
// local backend has no upstream to ask.
func (d *Docker) Runtimes(ctx context.Context) ([]engine.Runtime, error) {
	specs := language.All()
	runtimes := make([]engine.Runtime, 0, len(specs))
	for _, spec := range specs {
		runtimes = append(runtimes, engine.Runtime{
			Language: spec.Name,
			Version:  spec.Version,
			Aliases:  spec.Aliases,
		})
	}
	return runtimes, nil
}

func (d *Docker) Execute(ctx context.Context, job engine.Job) (*engine.Outcome, error) {
	spec, err := language.Resolve(job.Language)
	if err != nil {
		return nil, fmt.Errorf("resolve language: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "exec-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	codePath := filepath.Join(tempDir, spec.FileName)
	if err := os.WriteFile(codePath, []byte(job.Code), 0644); err != nil {
		return nil, fmt.Errorf("write code file: %w", err)
	}

	if err := ensureImage(ctx, d.cli, spec.Image); err != nil {
		return nil, err
	}

	return d.runContainer(ctx, tempDir, spec, job.Stdin)
}

func (d *Docker) runContainer(
	ctx context.Context,
	tempDir string,
	spec language.Spec,
	stdin string,
) (*engine.Outcome, error) {

	startTime := time.Now()

	cmd := spec.RunCommand
	if len(spec.CompileCmd) > 0 {
		cmd = []string{
			"sh",
			"-c",
			fmt.Sprintf(
				"%s && exec %s",
				strings.Join(spec.CompileCmd, " "),
				strings.Join(spec.RunCommand, " "),
			),
		}
	}

	withStdin := stdin != ""

	createResp, err := d.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:           spec.Image,
			Cmd:             cmd,
			WorkingDir:      workspaceDir,
			OpenStdin:       withStdin,
			StdinOnce:       withStdin,
			AttachStdin:     withStdin,
			AttachStdout:    true,
			AttachStderr:    true,
			NetworkDisabled: true,
		},
		&container.HostConfig{
			Resources: container.Resources{
				Memory:    200 * 1024 * 1024,
				NanoCPUs:  500_000_000,
				PidsLimit: ptr(int64(32)),
			},
			ReadonlyRootfs: true,
			CapDrop:        []string{"ALL"},
			SecurityOpt:    []string{"no-new-privileges"},
			Tmpfs: map[string]string{
				"/tmp": "rw,size=32m,noexec,nosuid",
			},
			Mounts: []mount.Mount{
				{
					Type:   mount.TypeBind,
					Source: tempDir,
					Target: workspaceDir,
				},
			},
		},
		nil, nil, "",
	)
	if err != nil {
		return nil, fmt.Errorf("container create: %w", err)
	}

	containerID := createResp.ID

	defer func() {
		_ = d.cli.ContainerRemove(
			context.Background(),
			containerID,
			container.RemoveOptions{Force: true},
		)
	}()

	attachResp, err := d.cli.ContainerAttach(
		ctx,
		containerID,
		container.AttachOptions{
			Stream: true,
			Stdin:  withStdin,
			Stdout: true,
			Stderr: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("container attach: %w", err)
	}
	defer attachResp.Close()

	var stdoutBuf, stderrBuf strings.Builder

	outputDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attachResp.Reader)
		outputDone <- err
	}()

	if err := d.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("container start: %w", err)
	}

	if withStdin {
		go func() {
			_, _ = attachResp.Conn.Write([]byte(stdin))
			_ = attachResp.CloseWrite()
		}()
	}

	waitCh, errCh := d.cli.ContainerWait(
		ctx,
		containerID,
		container.WaitConditionNotRunning,
	)

	var (
		exitCode int
		killed   bool
	)

	select {
	case err := <-errCh:
		if err != nil {
			return nil, fmt.Errorf("container wait: %w", err)
		}

	case status := <-waitCh:
		exitCode = int(status.StatusCode)

	case <-ctx.Done():
		killed = true

		_ = d.cli.ContainerKill(
			context.Background(),
			containerID,
			"KILL",
		)
		<-waitCh
	}

	<-outputDone

	elapsed := float64(time.Since(startTime).Milliseconds())

	out := &engine.Outcome{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Output: stdoutBuf.String() + stderrBuf.String(),
		Time:   &elapsed,
	}
	if killed {
		out.Signal = ptr("SIGKILL")
	} else {
		out.ExitCode = &exitCode
	}

	d.log.WithFields(logrus.Fields{
		"image":  spec.Image,
		"ms":     elapsed,
		"killed": killed,
	}).Debug("container run finished")

	return out, nil
}

func ptr[T any](v T) *T {
	return &v
}
