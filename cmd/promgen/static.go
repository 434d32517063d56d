//go:build !nostatic

package main

import _ "github.com/yanizio/promgen/internal/static" // static file stage
