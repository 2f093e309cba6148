package domain

// KeyPrefix is the default namespace for every key the service writes to a store.
const KeyPrefix = "discover:"
