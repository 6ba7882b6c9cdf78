// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package traceroute runs an opaque traceroute [Engine] one run at a time and
// relays its incremental output to a single registered [Listener].
//
// A [Service] serializes runs through a [Gate], accumulates the text the engine
// reports through [Service.AppendProgress] in a [Buffer], and hands every
// notification to a [Dispatcher]. The [MainLoop] dispatcher executes all listener
// code on the one goroutine that runs its loop, so listeners never observe a
// callback from the engine's goroutines.
//
// Typical usage:
//
//	loop := traceroute.NewMainLoop()
//	svc := traceroute.New(traceroute.Config{}, engine, loop)
//	svc.SetListenerFunc(func(l *traceroute.SimpleListener) {
//		l.Update(func(text string) { fmt.Print(text) })
//		l.Success(func(res traceroute.Result) { fmt.Println("traceroute finish") })
//	})
//	svc.Run(ctx, "8.8.8.8", true)
//	_ = loop.Run(ctx)
//
// Listener binding happens at delivery time: a notification is handed to
// whichever listener is registered when it executes on the loop.
package traceroute
