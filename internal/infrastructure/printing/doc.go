// Package printing turns the financial statement into a PDF: an html/template
// lays the statement out as HTML and a headless Chrome driven by chromedp
// prints it.
package printing
