package message

import "strings"

// DefaultLinkPrefix is prepended to derived filenames.
const DefaultLinkPrefix = "/message/"

// filenameLength is the number of trailing signature characters kept.
const filenameLength = 16

// Filename folds a base64 signature into a short URL-safe name.
//
// Leading 4-character groups are dropped while more than 16 characters
// remain, then the first '+' becomes '-', the first '/' becomes '_' and the
// first '=' is removed. Only the first occurrence of each is replaced.
func Filename(signature string) string {
	start := 0
	length := len(signature)
	for length > filenameLength {
		start += 4
		length -= 4
	}
	name := signature[start:]
	name = strings.Replace(name, "+", "-", 1)
	name = strings.Replace(name, "/", "_", 1)
	name = strings.Replace(name, "=", "", 1)
	return name
}

// Link returns prefix + Filename(signature), or "" when signature is empty.
func Link(prefix, signature string) string {
	if signature == "" {
		return ""
	}
	return prefix + Filename(signature)
}
