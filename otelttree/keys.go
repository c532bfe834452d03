package otelttree

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	ExpressionKey     = attribute.Key("ttree.expression")
	BranchKey         = attribute.Key("ttree.branch")
	InterpretationKey = attribute.Key("ttree.interpretation")
	EntriesKey        = attribute.Key("ttree.entries")
	ColumnsKey        = attribute.Key("ttree.columns")
	LibraryKey        = attribute.Key("ttree.library")
	ErrorKindKey      = attribute.Key("ttree.error.kind")
)

// Expression attribute.
func Expression(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   ExpressionKey,
		Value: attribute.StringValue(v),
	}
}

// Branch attribute.
func Branch(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   BranchKey,
		Value: attribute.StringValue(v),
	}
}

// Interpretation attribute.
func Interpretation(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   InterpretationKey,
		Value: attribute.StringValue(v),
	}
}

// Entries attribute.
func Entries(v int) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   EntriesKey,
		Value: attribute.IntValue(v),
	}
}

// Columns attribute.
func Columns(v int) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   ColumnsKey,
		Value: attribute.IntValue(v),
	}
}

// Library attribute.
func Library(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   LibraryKey,
		Value: attribute.StringValue(v),
	}
}

// ErrorKind attribute, one of "malformed", "not_found", "unsupported"
// or "other".
func ErrorKind(v string) attribute.KeyValue {
	return attribute.KeyValue{
		Key:   ErrorKindKey,
		Value: attribute.StringValue(v),
	}
}
