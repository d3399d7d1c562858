// Package parser converts suite configurations to and from their XML
// document form.
//
// A document looks like:
//
//	<suite name="smoke-tests" version="2.0">
//	  <description>Smoke tests</description>
//	  <parameters>
//	    <parameter name="base_url" value="http://localhost"/>
//	  </parameters>
//	  <execution stopOnFirstFailure="true">
//	    <timeout suite="600" scenario="120" step="30"/>
//	    <retry maxAttempts="2" delaySeconds="5" retryOnError="true"/>
//	    <environment default="staging">
//	      <variable name="API_URL" value="https://staging" environment="staging"/>
//	      <profile name="prod" extends="base">
//	        <property name="LOG_LEVEL" value="ERROR"/>
//	      </profile>
//	    </environment>
//	  </execution>
//	  <test name="smoke-tests">
//	    <classes><class name="tests.login"/></classes>
//	    <groups><run><include name="smoke"/><exclude name="slow"/></run></groups>
//	  </test>
//	</suite>
//
// Documents without an execution element may carry the execution policy as
// legacy parameters (stop_on_first_failure, retry_count, timeout_seconds,
// environment); those are consumed into the execution policy on parse.
package parser
