// Package billing holds the invoicing data model of the practice application:
// patients, catalog services and invoices with line items, payments and a
// quotation mode. Records are tenant-scoped; stores never return another
// practice's data. Monetary amounts are int64 cents.
package billing
