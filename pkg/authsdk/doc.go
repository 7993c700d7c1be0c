/*
Package authsdk provides a client SDK for the bloggers platform authentication API.

# Overview

The service issues a short-lived access token in the response body and a
long-lived refresh token in an HttpOnly cookie. Every login creates a device
session; refreshing rotates the refresh token so the previous one stops
working immediately.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: unauthenticated operations (registration, password recovery,
    health) and administrator operations guarded by HTTP Basic auth
  - Session: one logged-in device, holding both tokens

	client := authsdk.NewSDKClient("https://blogs.example.com")

	err := client.Register(ctx, authsdk.RegistrationRequest{
		Login:    "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	})

	// The code arrives by email.
	err = client.ConfirmRegistration(ctx, code)

	session, err := client.Login(ctx, "alice", "secret1")

# Automatic Token Refresh

Session methods that use the access token (Me) renew it 30 seconds before it
expires. The expiry is read from the token's exp claim without verifying the
signature; the service still verifies every token it receives.

Device management (Devices, DeleteDevice, DeleteOtherDevices), Refresh and
Logout authenticate with the refresh cookie instead.

A Session is safe for concurrent use, but concurrent Refresh calls on copies
of the same refresh token race on the server: only one of them wins and the
others get 401.

# Error Handling

Every non-2xx answer is returned as *APIError carrying the HTTP status and
the field errors from the errorsMessages body:

	err := client.Register(ctx, req)
	if msg, ok := errorField(err, "login"); ok {
		fmt.Println("login rejected:", msg)
	}

	func errorField(err error, field string) (string, bool) {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) {
			return apiErr.Field(field)
		}
		return "", false
	}

Rate limited calls fail with status 429; use IsStatus(err, http.StatusTooManyRequests).
*/
package authsdk
