// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError     = "error.internal"
	KeyValidationInvalid = "validation.invalid"
	KeyValidationFailed  = "validation.failed"
	KeyRateLimited       = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginDisabled      = "auth.login_disabled"

	// Products
	KeyProductNotFound    = "product.not_found"
	KeyProductUnavailable = "product.unavailable"
	KeyProductInvalidID   = "product.invalid_id"

	// Checkout
	KeyCheckoutEmptyCart       = "checkout.empty_cart"
	KeyCheckoutInvalidQuantity = "checkout.invalid_quantity"
	KeyCheckoutInsufficient    = "checkout.insufficient_stock"
	KeyCheckoutCartTooLarge    = "checkout.cart_too_large"

	// Orders
	KeyOrderNotFound = "order.not_found"

	// Webhooks
	KeyWebhookInvalidSignature = "webhook.invalid_signature"

	// Uploads
	KeyUploadMissingFile = "upload.missing_file"
	KeyUploadRejected    = "upload.rejected"
)
