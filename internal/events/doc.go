// Package events streams build progress to a Socket.IO endpoint: one event
// per executed unit and one when the build finishes. Publishing is best
// effort; a build never fails because its events could not be delivered.
package events
