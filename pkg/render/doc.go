// Package render turns stored text into HTML fragments: markdown
// descriptions and the small helpers the HTML pages share.
package render
