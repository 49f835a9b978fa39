// Package buyer holds the buyer-lead domain: categorical value domains,
// the record validator, the CSV row mapper, the change-diff builder and the
// export row formatter.
//
// Everything in this package is pure. Nothing here touches the database,
// the network or a clock, so all functions are safe for concurrent use.
package buyer
