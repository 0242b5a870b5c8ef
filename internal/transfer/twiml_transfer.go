package transfer

// EmptyTwiML is the well-formed no-op acknowledgement Twilio expects from a
// webhook. It is sent on both accepted (200) and rejected (403) requests so
// the transport never sees a malformed reply body.
const EmptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
