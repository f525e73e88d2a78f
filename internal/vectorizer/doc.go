// Package vectorizer implements a TF-IDF bag-of-words model over unigrams
// and bigrams with English stop word removal. Fitting is deterministic:
// vocabulary columns are assigned in lexicographic term order and the
// max-features truncation breaks frequency ties alphabetically, so the same
// corpus always produces byte-identical models. Transformed vectors use
// sublinear term frequency, smoothed inverse document frequency, and unit
// L2 normalization, which lets cosine ranking reduce to dot products.
package vectorizer
