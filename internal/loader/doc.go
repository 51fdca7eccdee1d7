// Package loader turns YAML configuration documents into the intermediate
// node tree. It is the only package that touches document syntax: scalar
// typing, "${...}" interpolation templates and the "???" required marker are
// all recognized here, so later stages work on a fully tagged tree.
package loader
