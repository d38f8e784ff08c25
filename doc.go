// Package memobird provides a client for the Memobird cloud print API.
//
// Memobird devices are small thermal printers driven entirely through the
// vendor's cloud service: clients bind an API key to a device, submit text
// or image content, and poll for delivery status.
//
// Basic usage:
//
//	client := memobird.New(apiKey, deviceID)
//
//	// Print a note
//	receipt, err := client.PrintText(ctx, "Hello from Go")
//
//	// Print a remote image, scaled to the device width
//	receipt, err = client.PrintImageFromURL(ctx, "https://example.com/photo.png")
//
//	// Poll delivery
//	status, err := client.Status(ctx, receipt.ContentID)
//
// The package handles device binding automatically and provides methods
// for:
//   - Submitting text, images, remote images, and web pages
//   - Building multi-part payloads mixing text and images
//   - Tracking delivery status
//
// Images are scaled down to the device's print width, reduced to 1-bit
// monochrome BMP and base64-encoded as the service requires; text is
// GBK-encoded. The user token obtained from binding is cached for the
// client's lifetime and re-resolved once, automatically, if the service
// rejects it.
package memobird
