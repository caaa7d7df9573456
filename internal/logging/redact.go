// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package logging

import (
	"net/url"
	"strings"
)

// SanitizeURL strips credentials and the query string from an image or
// collaborator URL before it is logged. Signed storage URLs carry tokens in
// the query. Data URLs are reduced to their media type.
//
//	https://u:p@cdn.example.com/a.png?sig=abc -> https://cdn.example.com/a.png
func SanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		if i := strings.IndexAny(raw, ";,"); i > 0 {
			return raw[:i] + ",..."
		}
		return "data:..."
	}

	u, err := url.Parse(raw)
	if err != nil {
		return truncateString(raw, 64)
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return truncateString(u.String(), 200)
}

// SanitizeID masks an opaque identifier, keeping the first and last 4 characters.
//
//	"3f2b9c1e-7a44-4e0b-9d7e-1c2f3a4b5c6d" -> "3f2b...5c6d"
func SanitizeID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 12 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
