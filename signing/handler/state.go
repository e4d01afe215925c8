package handler

import (
	"ocm.software/open-component-model/bindings/go/fnv/signing"
)

const (
	// SignerNameForegroundError highlights the signer of a signature that could not be checked.
	SignerNameForegroundError = "#FF0000"

	// MessageHashMismatch is reported for signatures that do not match the file content.
	MessageHashMismatch = "The file hashes don't match"

	customErrorIcon = "data:image/svg+xml;base64,PHN2ZyB2ZXJzaW9uPSIxLjEiIHZpZXdCb3g9IjAgMCAxNiAxNiIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj4NCjxzdHlsZSB0eXBlPSJ0ZXh0L2NzcyI+DQogIC5zdC1yZWR7ZmlsbDogI2ZmYjgyOTt9DQogIC5zdC13aGl0ZXtmaWxsOiNmZmZmZmY7fQ0KPC9zdHlsZT4NCjxjaXJjbGUgY2xhc3M9InN0LXJlZCIgY3g9IjgiIGN5PSI4IiByPSI3Ii8+DQo8cGF0aCBjbGFzcz0ic3Qtd2hpdGUiIGQ9Im01LjcwNyA0LjI5My0xLjQxNDEgMS40MTQxIDIuMjkzIDIuMjkzLTIuMjkzIDIuMjkzIDEuNDE0MSAxLjQxNDEgMi4yOTMtMi4yOTMgMi4yOTMgMi4yOTMgMS40MTQxLTEuNDE0MS0yLjI5My0yLjI5MyAyLjI5My0yLjI5My0xLjQxNDEtMS40MTQxLTIuMjkzIDIuMjkzLTIuMjkzLTIuMjkzeiIvPg0KPC9zdmc+DQo="
)

// ErrorState is shown by hosts for signatures that could not be checked.
func ErrorState() *signing.CustomState {
	return &signing.CustomState{
		Icon:        customErrorIcon,
		IconName:    "cryptoprovider-custom-error",
		Title:       "Custom state error",
		Description: "Custom state error was thrown",
	}
}
