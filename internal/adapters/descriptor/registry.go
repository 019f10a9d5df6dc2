// Package descriptor resolves fully-qualified protobuf message names to
// decoders built from FileDescriptorSets or .proto sources.
package descriptor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// Registry is populated by Load and LoadSearchPaths before any Decode call
// and is read-only afterwards.
type Registry struct {
	types map[protoreflect.FullName]protoreflect.MessageDescriptor
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[protoreflect.FullName]protoreflect.MessageDescriptor)}
}

// Load builds a registry from a serialized FileDescriptorSet.
func Load(path string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadSet(path); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadSet adds every message type from the descriptor set at path.
func (r *Registry) LoadSet(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDescriptorLoad, err)
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrDescriptorLoad, path, err)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrDescriptorLoad, path, err)
	}
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		r.addMessages(fd.Messages())
		return true
	})
	return nil
}

// LoadSearchPaths compiles every .proto file below the given directories.
// Each directory is also an import root; the well-known types are always
// importable. Types already present are kept.
func (r *Registry) LoadSearchPaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	var names []string
	seen := make(map[string]struct{})
	for _, root := range paths {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".proto") {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				names = append(names, rel)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: scan %s: %w", domain.ErrDescriptorLoad, root, err)
		}
	}
	if len(names) == 0 {
		return nil
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{ImportPaths: paths}),
	}
	files, err := compiler.Compile(ctx, names...)
	if err != nil {
		return fmt.Errorf("%w: compile: %w", domain.ErrDescriptorLoad, err)
	}
	for _, fd := range files {
		r.addMessages(fd.Messages())
	}
	return nil
}

func (r *Registry) addMessages(msgs protoreflect.MessageDescriptors) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.IsMapEntry() {
			continue
		}
		if _, ok := r.types[md.FullName()]; !ok {
			r.types[md.FullName()] = md
		}
		r.addMessages(md.Messages())
	}
}

func (r *Registry) HasType(fullName string) bool {
	_, ok := r.types[protoreflect.FullName(fullName)]
	return ok
}

// TypeCount reports how many message types are registered.
func (r *Registry) TypeCount() int {
	return len(r.types)
}

// Decode parses payload as fullName and converts it to a domain value.
func (r *Registry) Decode(fullName string, payload []byte) (domain.Value, error) {
	md, ok := r.types[protoreflect.FullName(fullName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownType, fullName)
	}
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDecode, fullName, err)
	}
	return convertMessage(msg), nil
}
