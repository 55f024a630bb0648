// Package window generates cosine-sum analysis windows for spectral
// frames.
package window
