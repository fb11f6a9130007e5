// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreNodeUpsertSerialization Code = "store.node.upsert.serialization_failure"
	CodeStoreEdgeUpsertSerialization Code = "store.edge.upsert.serialization_failure"
	CodeStorePropertiesCorrupt       Code = "store.properties.decode.corrupt"
	CodeStoreDatabaseFailure         Code = "store.database.failure"
	CodeStoreBackendUnsupported      Code = "store.backend.unsupported"
	CodeStoreInvalidInput            Code = "store.invalid_input"

	CodeGraphEntityTypeInvalid   Code = "graph.entity_type.parse.invalid"
	CodeGraphRelationTypeInvalid Code = "graph.relation_type.parse.invalid"

	CodeRecommendQueryFailure Code = "recommend.query.failure"

	CodeSeedDatasetReadFailure   Code = "seed.dataset.read.failure"
	CodeSeedDatasetInvalidFormat Code = "seed.dataset.parse.invalid_format"
	CodeSeedDatasetInvalid       Code = "seed.dataset.validate.invalid"
	CodeSeedWriteFailure         Code = "seed.write.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerNodeNotFound    Code = "server.node.not_found"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"

	CodeCLISetupFailure     Code = "cli.setup.failure"
	CodeCLINodeNotFound     Code = "cli.node.not_found"
	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
)

// Attr is one key/value pair of error context. Attrs with an empty key
// are dropped.
type Attr struct {
	Key   string
	Value any
}

func Field(key string, value any) Attr { return Attr{Key: key, Value: value} }

func FieldNodeID(id string) Attr { return Field("node_id", id) }

func FieldEdgeID(id string) Attr { return Field("edge_id", id) }

func FieldBackend(name string) Attr { return Field("backend", name) }

func New(code Code, msg string, fields ...Attr) error {
	return builder(code, fields).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Wrap annotates err with code, msg and fields. A nil err stays nil.
func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return builder(code, fields).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

func builder(code Code, fields []Attr) oops.OopsErrorBuilder {
	kv := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		if f.Key != "" {
			kv = append(kv, f.Key, f.Value)
		}
	}
	return oops.Code(code).With(kv...)
}

// CodeOf returns the innermost code in err's chain, or "" when err
// carries none.
func CodeOf(err error) Code {
	oe, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oe.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprint(c))
	}
}

// FieldsOf returns the context attached anywhere in err's chain.
func FieldsOf(err error) map[string]any {
	oe, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oe.Context()
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// statusByReason maps the last segment of a code to its HTTP status.
var statusByReason = map[string]int{
	"not_found":             http.StatusNotFound,
	"invalid":               http.StatusBadRequest,
	"invalid_input":         http.StatusBadRequest,
	"invalid_value":         http.StatusBadRequest,
	"invalid_format":        http.StatusBadRequest,
	"serialization_failure": http.StatusUnprocessableEntity,
}

func IsNotFound(err error) bool { return reason(err) == "not_found" }

func IsInvalidInput(err error) bool {
	return HTTPStatus(err) == http.StatusBadRequest
}

// IsCorrupt reports stored data that could not be decoded. It is never
// returned for a missing record.
func IsCorrupt(err error) bool { return reason(err) == "corrupt" }

// IsSerialization reports a value that could not be encoded for storage.
func IsSerialization(err error) bool { return reason(err) == "serialization_failure" }

// HTTPStatus maps err's code to a response status; uncoded errors are 500.
func HTTPStatus(err error) int {
	if status, ok := statusByReason[reason(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func reason(err error) string {
	code := string(CodeOf(err))
	return code[strings.LastIndex(code, ".")+1:]
}
