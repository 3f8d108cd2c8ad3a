package domain

// KeyPrefix namespaces every key geolens writes to the shared store.
const KeyPrefix = "geolens:"
