package internal

// Version is the ledgerlingo release
const Version = "0.4.0"
