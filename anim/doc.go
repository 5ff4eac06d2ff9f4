/*
Package anim contains the count-up counter animation and the frame clock that
drives it.

A Counter never runs on its own goroutine. It schedules one callback at a time
on a FrameClock, recomputes its displayed value when the callback fires and
schedules the next one until the animation completes or is stopped.
*/
package anim
