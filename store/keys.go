package store

// GuestBucket namespaces state written while nobody is logged in.
const GuestBucket = "guest"

// Bucket maps an identity to its namespace; the empty identity is the guest.
func Bucket(identity string) string {
	if identity == "" {
		return GuestBucket
	}
	return identity
}

func CartKey(identity string) string   { return "cart_" + Bucket(identity) }
func OrdersKey(identity string) string { return "orders_" + Bucket(identity) }
