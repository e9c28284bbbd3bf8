// Package file provides the file-based configuration store.
//
// Settings live in ~/.cadastro/config.toml as nested TOML tables and are
// exposed to the core as flat dot-notation keys ("store.url",
// "knowledge.top_k").
package file
