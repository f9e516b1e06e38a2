package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// ensureImage pulls the image if it is not present locally.
func ensureImage(
	ctx context.Context,
	cli *client.Client,
	imageName string,
) error {

	_, _, err := cli.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil
	}

	reader, err := cli.ImagePull(
		ctx,
		imageName,
		image.PullOptions{},
	)
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// The pull does not complete until its progress stream is drained.
	dec := json.NewDecoder(reader)
	for {
		var msg map[string]interface{}
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("image pull decode error: %w", err)
		}
	}

	return nil
}
