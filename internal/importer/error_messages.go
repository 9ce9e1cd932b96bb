package importer

// error_messages.go maps import failures to operator-facing messages with
// codes support staff can look up.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Structural mismatch: required columns are absent from the header
//	         Action: Compare the header row with the downloaded template
//	IMP002 - Invalid rows: required values are empty
//	         Action: Fill in the listed cells and upload again
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unreadable spreadsheet: not an .xlsx workbook
//	FILE003 - Empty file
//	FILE004 - No file provided
//	FILE005 - Workbook has no sheets
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: all import slots are taken
//	UPL002 - Request cancelled
//	UPL003 - Request timeout
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Unknown import type
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Deadlock
//	DB004 - Duplicate record key within one batch
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is first; foreign errors (driver,
// network) fall back to case-insensitive substring patterns. The first
// match wins, so specific entries come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// ErrNoFile is returned by transports when a request carries no file.
var ErrNoFile = errors.New("no file provided")

// UserMessage is operator-facing error information.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	sentinel error
	pattern  string
	msg      UserMessage
}

var errorPatterns = []errorPattern{
	// Import
	{
		sentinel: ErrStructuralMismatch,
		msg: UserMessage{
			Message: "The file is missing required columns",
			Action:  "Compare the header row with the downloaded template",
			Code:    "IMP001",
		},
	},
	{
		sentinel: ErrInvalidRows,
		msg: UserMessage{
			Message: "Some rows have empty required fields",
			Action:  "Fill in the listed cells and upload again",
			Code:    "IMP002",
		},
	},

	// File
	{
		sentinel: ErrFileTooLarge,
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller workbooks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload an .xlsx workbook with data rows",
			Code:    "FILE003",
		},
	},
	{
		sentinel: sheet.ErrNoSheets,
		msg: UserMessage{
			Message: "The workbook has no sheets",
			Action:  "Upload a workbook with the data on its first sheet",
			Code:    "FILE005",
		},
	},
	{
		sentinel: sheet.ErrUnreadable,
		msg: UserMessage{
			Message: "The file is not a readable spreadsheet",
			Action:  "Save the file as an Excel workbook (.xlsx) and try again",
			Code:    "FILE002",
		},
	},
	{
		sentinel: ErrNoFile,
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an .xlsx file to upload",
			Code:    "FILE004",
		},
	},

	// Upload
	{
		sentinel: ErrTooManyImports,
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "UPL003",
		},
	},

	// Schema
	{
		sentinel: ErrUnknownSchema,
		msg: UserMessage{
			Message: "This import type is not configured",
			Action:  "Check the import type in the URL or command",
			Code:    "SCH001",
		},
	},

	// Database
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "cannot affect row a second time",
		msg: UserMessage{
			Message: "The file contains the same record twice",
			Action:  "Remove duplicate rows and upload again",
			Code:    "DB004",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to an operator-facing message. A nil error
// yields the zero UserMessage; unknown errors yield ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
			return ep.msg
		}
		if ep.pattern != "" && strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
