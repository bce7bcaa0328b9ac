package common

// AppName is used for the default data directory and the HTTP User-Agent.
const AppName = "gophkeeper"

// DataFileName is the name of the structured document inside the data directory.
const DataFileName = "data.json"
