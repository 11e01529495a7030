// Command rival launches a Rival function from the terminal.
//
// It takes the same rival:// and web+rival:// links the browser shell
// handles, invokes the function with the remembered or supplied settings and
// prints the HTML it returns. With -run-scripts the page's inline scripts run
// in an embedded JavaScript runtime with RivalWidget available.
//
// Usage:
//
//	rival -api-key $KEY 'rival://fn-123?baseUrl=https://api.example&version=Draft'
//	rival -print-url 'web+rival://fn-123/version=Draft'
//	rival -store ~/.rival/config.toml -remember -run-scripts rival://fn-123
package main
