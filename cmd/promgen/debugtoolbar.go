//go:build debugtoolbar

package main

import _ "github.com/yanizio/promgen/modules/debugtoolbar" // debug toolbar stage
