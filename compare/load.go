// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cerfacs/coprof/gprof"
)

// An UnreadableSourceError reports a profile that could not be opened
// or decoded. Load skips such profiles.
type UnreadableSourceError struct {
	Path string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("couldn't load %s: %v", e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}

// ErrNoData is matched by the error Load returns when no profile could
// be loaded.
var ErrNoData = errors.New("not a single profile has been successfully decoded")

// A NoDataError reports that every input of Load failed.
type NoDataError struct {
	// Failures holds one *UnreadableSourceError per input.
	Failures []error
}

func (e *NoDataError) Error() string {
	return ErrNoData.Error()
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Read returns the profile named by ref. If nil, ref is the
	// path of a JSON profile file.
	Read func(ctx context.Context, ref string) (*gprof.Profile, error)

	// Warn, if non-nil, is called for every input that could not
	// be read.
	Warn func(format string, args ...interface{})

	// AllowLabels permits refs of the form label=ref, in which case
	// label is used as the member name.
	AllowLabels bool
}

// ReadFile reads the JSON profile at path.
func ReadFile(ctx context.Context, path string) (*gprof.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gprof.ReadProfile(f)
}

// Load reads the profiles named by refs concurrently and returns them
// in the order of refs.
//
// An input that cannot be read is reported through opts.Warn and left
// out; the others are still compared. If no input can be read, Load
// returns a *NoDataError.
//
// Member names are the labels of labelled refs, and otherwise the base
// names of the refs without a ".json" extension. Refs that would get the
// same name are disambiguated by appending "#N".
func Load(ctx context.Context, refs []string, opts *LoadOptions) (ProfileSet, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}
	read := opts.Read
	if read == nil {
		read = ReadFile
	}

	type input struct {
		ref, name string
	}
	inputs := make([]input, len(refs))
	nameCount := make(map[string]int)
	for i, ref := range refs {
		name := ""
		if j := strings.Index(ref, "="); opts.AllowLabels && j >= 0 {
			name, ref = ref[:j], ref[j+1:]
		} else {
			name = ProfileName(ref)
		}
		nameCount[name]++
		inputs[i] = input{ref, name}
	}
	nameI := make(map[string]int)
	for i := range inputs {
		in := &inputs[i]
		if nameCount[in.name] == 1 {
			continue
		}
		n := in.name
		in.name = fmt.Sprintf("%s#%d", n, nameI[n])
		nameI[n]++
	}

	profiles := make([]*gprof.Profile, len(inputs))
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			p, err := read(ctx, ref)
			if err != nil {
				errs[i] = &UnreadableSourceError{ref, err}
				return
			}
			profiles[i] = p
		}(i, in.ref)
	}
	wg.Wait()

	var set ProfileSet
	var failures []error
	for i, in := range inputs {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			if opts.Warn != nil {
				opts.Warn("%v\n", errs[i])
			}
			continue
		}
		set = append(set, Member{in.name, profiles[i]})
	}
	if len(set) == 0 {
		return nil, &NoDataError{failures}
	}
	return set, nil
}

// ProfileName returns the member name used for the profile file at
// path: its base name without a ".json" extension.
func ProfileName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}
