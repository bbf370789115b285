//go:build !darwin

package backend

import "errors"

func resolveEntryPoints(string) (EntryPoints, error) {
	return EntryPoints{}, errors.New("dynamic bridge loading is only built for darwin")
}
