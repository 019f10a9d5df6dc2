package descriptor

import (
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/ghalamif/mcap2mat/internal/domain"
)

// convertMessage emits populated fields in declaration order under their
// proto names.
func convertMessage(msg protoreflect.Message) domain.Mapping {
	fields := msg.Descriptor().Fields()
	out := make(domain.Mapping, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if !msg.Has(fd) {
			continue
		}
		out = append(out, domain.Entry{Key: string(fd.Name()), Value: convertField(fd, msg.Get(fd))})
	}
	return out
}

func convertField(fd protoreflect.FieldDescriptor, v protoreflect.Value) domain.Value {
	switch {
	case fd.IsList():
		list := v.List()
		seq := make(domain.Sequence, list.Len())
		for i := range seq {
			seq[i] = convertScalar(fd, list.Get(i))
		}
		return seq
	case fd.IsMap():
		return convertMap(fd, v.Map())
	default:
		return convertScalar(fd, v)
	}
}

func convertMap(fd protoreflect.FieldDescriptor, m protoreflect.Map) domain.Mapping {
	keys := make([]protoreflect.MapKey, 0, m.Len())
	m.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		keys = append(keys, k)
		return true
	})
	keyKind := fd.MapKey().Kind()
	sort.Slice(keys, func(i, j int) bool { return lessKey(keyKind, keys[i], keys[j]) })

	out := make(domain.Mapping, len(keys))
	for i, k := range keys {
		out[i] = domain.Entry{Key: k.String(), Value: convertScalar(fd.MapValue(), m.Get(k))}
	}
	return out
}

func lessKey(kind protoreflect.Kind, a, b protoreflect.MapKey) bool {
	switch kind {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return a.Int() < b.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return a.Uint() < b.Uint()
	case protoreflect.BoolKind:
		return !a.Bool() && b.Bool()
	default:
		return a.String() < b.String()
	}
}

func convertScalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) domain.Value {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return domain.Bool(v.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return domain.Int(v.Int())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return domain.Uint(v.Uint())
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return domain.Number(v.Float())
	case protoreflect.StringKind:
		return domain.String(v.String())
	case protoreflect.BytesKind:
		return domain.Bytes(append([]byte(nil), v.Bytes()...))
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return domain.String(ev.Name())
		}
		return domain.Int(int64(v.Enum()))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return convertMessage(v.Message())
	default:
		return domain.Null{}
	}
}
