// Package event runs domain event handlers asynchronously.
//
// Browser callbacks (navigation, context menu, download, form submit,
// link hover) arrive as model.Event values. A handler runs in its own
// goroutine and its verdict is delivered through a Future, so the event
// source never blocks on the scan backend.
package event
