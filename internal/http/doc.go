// Package http exposes the category attribute edit endpoints. The routes
// back the edit screen overlay: read and write description text, read and
// write the image reference, and upload a replacement image file.
package http
