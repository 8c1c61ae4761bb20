// Package redispub publishes finalizer errors to a redis channel.
//
// A Publisher is a fallible strategy: when redis is unreachable the publish
// error is handed to the chain's fallback, so an error is never lost
// silently.
//
//	pub, err := redispub.Dial(ctx, redispub.Config{
//	    URL:     "redis://localhost:6379/0",
//	    Channel: "finalize.errors",
//	})
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//
//	finalize.InstallPrimary(pub)
package redispub
