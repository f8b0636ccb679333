// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"github.com/samber/oops"
)

// Error codes for registry and dispatch failures.
const (
	CodeDuplicateCommand     = "DUPLICATE_COMMAND"
	CodeInvalidCommand       = "INVALID_COMMAND"
	CodeCatalogPublishFailed = "CATALOG_PUBLISH_FAILED"
	CodeUnknownCommand       = "UNKNOWN_COMMAND"
	CodeInvalidArgs          = "INVALID_ARGS"
	CodeNotCommand           = "NOT_COMMAND"
	CodePermissionDenied     = "PERMISSION_DENIED"
)

// ErrDuplicateCommand creates an error for a command name collision.
// existing is the module already owning the name (or the earlier batch entry).
func ErrDuplicateCommand(name, module, existing string) error {
	return oops.In("command").
		Code(CodeDuplicateCommand).
		With("command", name).
		With("module", module).
		With("existing_module", existing).
		Errorf("command %q from module %q collides with module %q", name, module, existing)
}

// ErrCatalogPublish wraps a failed remote catalog publish.
func ErrCatalogPublish(op string, count int, cause error) error {
	return oops.In("command").
		Code(CodeCatalogPublishFailed).
		With("operation", op).
		With("commands", count).
		Hint("local command set left unchanged").
		Wrapf(cause, "publish command catalog")
}

// ErrUnknownCommand creates an error for an unknown command.
func ErrUnknownCommand(cmd string) error {
	return oops.In("command").
		Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrInvalidArgs creates an error for invalid arguments.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.In("command").
		Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrPermissionDenied creates an error for a caller not allowed to run cmd.
func ErrPermissionDenied(cmd, author string) error {
	return oops.In("command").
		Code(CodePermissionDenied).
		With("command", cmd).
		With("author_id", author).
		Errorf("permission denied")
}

// UserMessage extracts a user-facing message from an error.
func UserMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeUnknownCommand:
		return "Unknown command. Try /help."
	case CodePermissionDenied:
		return "You are not allowed to do that."
	case CodeInvalidArgs:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: /" + usage
		}
		return "Invalid arguments."
	default:
		return "Something went wrong. Try again."
	}
}
