//go:build !darwin && !linux

package system

import "context"

func readModelAndChip() (string, string) {
	return unknownModel, unknownChip
}

func readFriendlyName(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return hostname(), nil
}
