package domain

// KeyPrefix namespaces every key this service reads or writes in the store.
const KeyPrefix = "a8004:"
