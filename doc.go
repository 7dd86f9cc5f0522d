// Package mwdump is a streaming reader for the MediaWiki xml dump
// format.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// A Parser pulls one Page at a time out of a dump without ever holding
// more than the page currently being assembled. Only dumps with a
// single revision per page are supported (the *-pages-articles.xml
// files, or Special:Export with "current revision only"); anything
// else is reported as an error rather than guessed at.
//
// Decompression is up to the caller. See the programs in the tools
// subpackages for how bzip2 dumps and multistream indexes are fed in.
package mwdump
